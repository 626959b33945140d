package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chronotrack/time-tracking-api/internal/database"
	"github.com/chronotrack/time-tracking-api/internal/models"
	"github.com/chronotrack/time-tracking-api/internal/repository"
	"github.com/chronotrack/time-tracking-api/internal/services"
)

// TeamHandlerTestSuite defines the test suite for TeamHandler
type TeamHandlerTestSuite struct {
	suite.Suite
	db          *gorm.DB
	handler     *TeamHandler
	teamService *services.TeamService
}

// SetupTest runs before each test
func (suite *TeamHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.teamService = services.NewTeamService(repository.NewTeamRepository(suite.db))
	suite.handler = NewTeamHandler(suite.teamService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TeamHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TeamHandlerTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TeamHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
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

func (suite *TeamHandlerTestSuite) TestCreateTeam_Success() {
	user := suite.createTestUser("alice")

	body, _ := json.Marshal(map[string]string{
		"name":        "Platform Team",
		"description": "Infra and tooling",
	})
	c, w := suite.createAuthContext("POST", "/api/teams", body, user.ID)

	suite.handler.CreateTeam(c)

	suite.Equal(http.StatusCreated, w.Code)

	var member models.TeamMember
	suite.Require().NoError(suite.db.Where("user_id = ?", user.ID).First(&member).Error)
	suite.Equal(models.RoleOwner, member.Role)
}

func (suite *TeamHandlerTestSuite) TestCreateTeam_MissingName() {
	user := suite.createTestUser("alice")

	body, _ := json.Marshal(map[string]string{"description": "no name"})
	c, w := suite.createAuthContext("POST", "/api/teams", body, user.ID)

	suite.handler.CreateTeam(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TeamHandlerTestSuite) TestListTeams() {
	user := suite.createTestUser("alice")

	_, err := suite.teamService.CreateTeam(services.CreateTeamInput{
		Name:    "Platform Team",
		OwnerID: user.ID,
	})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("GET", "/api/teams", nil, user.ID)

	suite.handler.ListTeams(c)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]any
	err = json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)

	teams, ok := response["teams"].([]any)
	suite.Require().True(ok)
	suite.Len(teams, 1)
}

func (suite *TeamHandlerTestSuite) TestJoinTeam_Success() {
	owner := suite.createTestUser("alice")
	joiner := suite.createTestUser("bob")

	team, err := suite.teamService.CreateTeam(services.CreateTeamInput{
		Name:    "Platform Team",
		OwnerID: owner.ID,
	})
	suite.Require().NoError(err)

	body, _ := json.Marshal(map[string]string{"invite_code": team.InviteCode})
	c, w := suite.createAuthContext("POST", "/api/teams/join", body, joiner.ID)

	suite.handler.JoinTeam(c)

	suite.Equal(http.StatusOK, w.Code)

	var member models.TeamMember
	suite.Require().NoError(suite.db.Where("team_id = ? AND user_id = ?", team.ID, joiner.ID).First(&member).Error)
	suite.Equal(models.RoleMember, member.Role)
}

func (suite *TeamHandlerTestSuite) TestJoinTeam_InvalidCode() {
	joiner := suite.createTestUser("bob")

	body, _ := json.Marshal(map[string]string{"invite_code": "NOPE-NOPE-NOPE"})
	c, w := suite.createAuthContext("POST", "/api/teams/join", body, joiner.ID)

	suite.handler.JoinTeam(c)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TeamHandlerTestSuite) TestJoinTeam_AlreadyMember() {
	owner := suite.createTestUser("alice")

	team, err := suite.teamService.CreateTeam(services.CreateTeamInput{
		Name:    "Platform Team",
		OwnerID: owner.ID,
	})
	suite.Require().NoError(err)

	body, _ := json.Marshal(map[string]string{"invite_code": team.InviteCode})
	c, w := suite.createAuthContext("POST", "/api/teams/join", body, owner.ID)

	suite.handler.JoinTeam(c)

	suite.Equal(http.StatusConflict, w.Code)
}

// TestTeamHandlerTestSuite runs the test suite
func TestTeamHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TeamHandlerTestSuite))
}
