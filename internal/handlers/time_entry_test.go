package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chronotrack/time-tracking-api/internal/authz"
	"github.com/chronotrack/time-tracking-api/internal/database"
	"github.com/chronotrack/time-tracking-api/internal/middleware"
	"github.com/chronotrack/time-tracking-api/internal/models"
	"github.com/chronotrack/time-tracking-api/internal/repository"
	"github.com/chronotrack/time-tracking-api/internal/services"
)

// TimeEntryHandlerTestSuite defines the test suite for TimeEntryHandler
type TimeEntryHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TimeEntryHandler
}

// SetupTest runs before each test
func (suite *TimeEntryHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Project{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TimeEntry{},
		&models.CustomFieldDefinition{},
		&models.TimeEntryCustomFieldValue{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	entryRepo := repository.NewTimeEntryRepository(suite.db)
	fieldRepo := repository.NewCustomFieldRepository(suite.db)
	teamRepo := repository.NewTeamRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	policy := authz.NewTimeEntryPolicy(teamRepo)

	entryService := services.NewTimeEntryService(entryRepo, fieldRepo, taskRepo, policy)
	historyService := services.NewHistoryService(entryRepo)
	teamService := services.NewTeamService(teamRepo)

	suite.handler = NewTimeEntryHandler(entryService, historyService, teamService, taskRepo, fieldRepo)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TimeEntryHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data
func (suite *TimeEntryHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TimeEntryHandlerTestSuite) createTestTeam(name string) *models.Team {
	team := &models.Team{
		Name:       name,
		InviteCode: name + "_CODE",
	}
	suite.db.Create(team)
	return team
}

func (suite *TimeEntryHandlerTestSuite) createTestMember(teamID, userID uint64) *models.TeamMember {
	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: time.Now(),
	}
	suite.db.Create(member)
	return member
}

func (suite *TimeEntryHandlerTestSuite) createTestEntry(userID, teamID uint64, description string, endedAt *time.Time) *models.TimeEntry {
	entry := &models.TimeEntry{
		UserID:      userID,
		TeamID:      teamID,
		Description: description,
		StartedAt:   time.Now().Add(-time.Hour),
		EndedAt:     endedAt,
	}
	suite.db.Create(entry)
	return entry
}

// Helper function to create authenticated context
func (suite *TimeEntryHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

func (suite *TimeEntryHandlerTestSuite) TestCreate_Success() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	body, _ := json.Marshal(map[string]any{
		"description": "Writing documentation",
		"team_id":     team.ID,
	})
	c, w := suite.createAuthContext("POST", "/api/time-entries", body, user.ID)

	suite.handler.Create(c)

	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)
	suite.Equal("Writing documentation", response["description"])
	suite.Nil(response["ended_at"])
}

func (suite *TimeEntryHandlerTestSuite) TestCreate_WithCustomFields() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	suite.db.Create(&models.CustomFieldDefinition{
		Name:    "Priority",
		Code:    "priority",
		Type:    models.FieldTypeSelect,
		Options: models.StringList{"low", "high"},
	})

	body, _ := json.Marshal(map[string]any{
		"description":   "Client work",
		"team_id":       team.ID,
		"custom_fields": map[string]any{"priority": "high"},
	})
	c, w := suite.createAuthContext("POST", "/api/time-entries", body, user.ID)

	suite.handler.Create(c)

	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)

	values, ok := response["custom_field_values"].([]any)
	suite.Require().True(ok)
	suite.Require().Len(values, 1)
	value := values[0].(map[string]any)
	suite.Equal("high", value["value"])
}

func (suite *TimeEntryHandlerTestSuite) TestCreate_ValidationFailure() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	suite.db.Create(&models.CustomFieldDefinition{
		TeamID:     &team.ID,
		Name:       "Client reference",
		Code:       "client_ref",
		Type:       models.FieldTypeText,
		IsRequired: true,
	})

	body, _ := json.Marshal(map[string]any{
		"description": "Client work",
		"team_id":     team.ID,
	})
	c, w := suite.createAuthContext("POST", "/api/time-entries", body, user.ID)

	suite.handler.Create(c)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)
	suite.Equal("VALIDATION_FAILED", response["code"])

	details, ok := response["details"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(details, "custom_fields.client_ref")
}

func (suite *TimeEntryHandlerTestSuite) TestCreate_NotTeamMember() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("other_team")

	body, _ := json.Marshal(map[string]any{
		"description": "Work",
		"team_id":     team.ID,
	})
	c, w := suite.createAuthContext("POST", "/api/time-entries", body, user.ID)

	suite.handler.Create(c)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TimeEntryHandlerTestSuite) TestUpdate_ClearEndedAt() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	endedAt := time.Now()
	entry := suite.createTestEntry(user.ID, team.ID, "Work", &endedAt)

	body := []byte(`{"ended_at": null}`)
	c, w := suite.createAuthContext("PUT", "/api/time-entries/1", body, user.ID)
	c.Set(middleware.ContextKeyTimeEntry, *entry)

	suite.handler.Update(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)
	suite.Nil(response["ended_at"])
}

func (suite *TimeEntryHandlerTestSuite) TestUpdate_InvalidTimestamp() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	entry := suite.createTestEntry(user.ID, team.ID, "Work", nil)

	body := []byte(`{"started_at": "not-a-date"}`)
	c, w := suite.createAuthContext("PUT", "/api/time-entries/1", body, user.ID)
	c.Set(middleware.ContextKeyTimeEntry, *entry)

	suite.handler.Update(c)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TimeEntryHandlerTestSuite) TestUpdate_NotOwner() {
	user := suite.createTestUser("alice")
	other := suite.createTestUser("bob")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	entry := suite.createTestEntry(user.ID, team.ID, "Work", nil)

	body := []byte(`{"description": "Hijacked"}`)
	c, w := suite.createAuthContext("PUT", "/api/time-entries/1", body, other.ID)
	c.Set(middleware.ContextKeyTimeEntry, *entry)

	suite.handler.Update(c)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TimeEntryHandlerTestSuite) TestStop_Success() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	entry := suite.createTestEntry(user.ID, team.ID, "Work", nil)

	c, w := suite.createAuthContext("PUT", "/api/time-entries/1/stop", nil, user.ID)
	c.Set(middleware.ContextKeyTimeEntry, *entry)

	suite.handler.Stop(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)
	suite.NotNil(response["ended_at"])
}

func (suite *TimeEntryHandlerTestSuite) TestStop_AlreadyStopped() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	endedAt := time.Now()
	entry := suite.createTestEntry(user.ID, team.ID, "Work", &endedAt)

	c, w := suite.createAuthContext("PUT", "/api/time-entries/1/stop", nil, user.ID)
	c.Set(middleware.ContextKeyTimeEntry, *entry)

	suite.handler.Stop(c)

	suite.Equal(http.StatusConflict, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)
	suite.Equal("CONFLICT", response["code"])
}

func (suite *TimeEntryHandlerTestSuite) TestDelete_Success() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	entry := suite.createTestEntry(user.ID, team.ID, "Work", nil)

	c, w := suite.createAuthContext("DELETE", "/api/time-entries/1", nil, user.ID)
	c.Set(middleware.ContextKeyTimeEntry, *entry)

	suite.handler.Delete(c)

	suite.Equal(http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.TimeEntry{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *TimeEntryHandlerTestSuite) TestDelete_NotOwner() {
	user := suite.createTestUser("alice")
	other := suite.createTestUser("bob")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	entry := suite.createTestEntry(user.ID, team.ID, "Work", nil)

	c, w := suite.createAuthContext("DELETE", "/api/time-entries/1", nil, other.ID)
	c.Set(middleware.ContextKeyTimeEntry, *entry)

	suite.handler.Delete(c)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TimeEntryHandlerTestSuite) TestList_ReturnsTrackingPayload() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	suite.createTestEntry(user.ID, team.ID, "Running timer", nil)

	suite.db.Create(&models.CustomFieldDefinition{
		Name: "Notes",
		Code: "notes",
		Type: models.FieldTypeText,
	})

	c, w := suite.createAuthContext("GET", "/api/time-tracking", nil, user.ID)

	suite.handler.List(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)

	suite.NotNil(response["active_timer"])
	suite.NotNil(response["last_team_id"])

	teams, ok := response["available_teams"].([]any)
	suite.Require().True(ok)
	suite.Len(teams, 1)

	definitions, ok := response["custom_field_definitions"].([]any)
	suite.Require().True(ok)
	suite.Len(definitions, 1)

	entries, ok := response["time_entries"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal(float64(1), entries["total"])
}

func (suite *TimeEntryHandlerTestSuite) TestList_InvalidDateFilter() {
	user := suite.createTestUser("alice")

	c, w := suite.createAuthContext("GET", "/api/time-tracking?start_date=04-04-2025", nil, user.ID)

	suite.handler.List(c)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TimeEntryHandlerTestSuite) TestList_NextPageURLSet() {
	user := suite.createTestUser("alice")
	team := suite.createTestTeam("alice_team")
	suite.createTestMember(team.ID, user.ID)

	for i := 0; i < 35; i++ {
		endedAt := time.Now()
		suite.createTestEntry(user.ID, team.ID, "Work", &endedAt)
	}

	c, w := suite.createAuthContext("GET", "/api/time-tracking?page=1", nil, user.ID)

	suite.handler.List(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)

	entries, ok := response["time_entries"].(map[string]any)
	suite.Require().True(ok)
	suite.NotNil(entries["next_page_url"])

	data, ok := entries["data"].([]any)
	suite.Require().True(ok)
	suite.Len(data, 30)
}

// TestTimeEntryHandlerTestSuite runs the test suite
func TestTimeEntryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TimeEntryHandlerTestSuite))
}
