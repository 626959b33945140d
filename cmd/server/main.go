package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/chronotrack/time-tracking-api/internal/authz"
	"github.com/chronotrack/time-tracking-api/internal/config"
	"github.com/chronotrack/time-tracking-api/internal/constants"
	"github.com/chronotrack/time-tracking-api/internal/database"
	"github.com/chronotrack/time-tracking-api/internal/handlers"
	"github.com/chronotrack/time-tracking-api/internal/middleware"
	"github.com/chronotrack/time-tracking-api/internal/repository"
	"github.com/chronotrack/time-tracking-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			log.Fatalf("Failed to add indexes: %v", err)
		}
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	fieldRepo := repository.NewCustomFieldRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)

	// Initialize services
	policy := authz.NewTimeEntryPolicy(teamRepo)
	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo)
	entryService := services.NewTimeEntryService(entryRepo, fieldRepo, taskRepo, policy)
	historyService := services.NewHistoryService(entryRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	entryHandler := handlers.NewTimeEntryHandler(entryService, historyService, teamService, taskRepo, fieldRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Time Tracking API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Team routes (protected)
		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth())
		{
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListTeams)
			teams.POST("/join", teamHandler.JoinTeam)
		}

		// Time tracking routes (protected)
		api.GET("/time-tracking", middleware.RequireAuth(), entryHandler.List)

		entries := api.Group("/time-entries")
		entries.Use(middleware.RequireAuth())
		{
			entries.POST("", entryHandler.Create)
			entries.PUT("/:id", middleware.RequireTimeEntry(), entryHandler.Update)
			entries.PUT("/:id/stop", middleware.RequireTimeEntry(), entryHandler.Stop)
			entries.DELETE("/:id", middleware.RequireTimeEntry(), entryHandler.Delete)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
