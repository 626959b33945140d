package repository

import (
	"time"

	"github.com/chronotrack/time-tracking-api/internal/models"
)

// TimeEntryRepository defines the interface for time entry data access
type TimeEntryRepository interface {
	// CreateWithValues inserts an entry and its custom field value rows in
	// a single transaction; a failed value insert rolls back the entry.
	CreateWithValues(entry *models.TimeEntry, values []models.TimeEntryCustomFieldValue) error

	// FindByID finds a time entry by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.TimeEntry, error)

	// List retrieves a user's entries with filtering, sorting and pagination
	List(filter TimeEntryFilter) ([]models.TimeEntry, int64, error)

	// Update persists changes to an entry
	Update(entry *models.TimeEntry) error

	// SaveWithValues persists entry changes and upserts the given custom
	// field values in a single transaction
	SaveWithValues(entry *models.TimeEntry, values []models.TimeEntryCustomFieldValue) error

	// Delete removes an entry and its custom field value rows
	Delete(id uint64) error

	// FindRunning returns the user's running entry, if any
	FindRunning(userID uint64) (*models.TimeEntry, error)

	// FindLatest returns the user's most recently created entry
	FindLatest(userID uint64) (*models.TimeEntry, error)

	// CountValues counts stored custom field value rows for an entry
	CountValues(entryID uint64) (int64, error)
}

// TimeEntryFilter holds filtering options for listing time entries.
// StartDate/EndDate bound started_at: inclusive lower, exclusive upper.
type TimeEntryFilter struct {
	UserID        uint64
	StartedFrom   *time.Time
	StartedBefore *time.Time
	SortColumn    string
	SortDirection string
	Page          int
	PageSize      int
}

// CustomFieldRepository defines the interface for field definition access
type CustomFieldRepository interface {
	// ListForTeam resolves the applicable definition set for a team:
	// global definitions plus the team's own
	ListForTeam(teamID uint64) ([]models.CustomFieldDefinition, error)

	// ListForTeams resolves definitions applicable to any of the teams,
	// ordered by name (used by the listing endpoint)
	ListForTeams(teamIDs []uint64) ([]models.CustomFieldDefinition, error)

	// Create creates a new definition
	Create(def *models.CustomFieldDefinition) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(team *models.Team) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// FindByInviteCode finds a team by invite code
	FindByInviteCode(code string) (*models.Team, error)

	// AddMember adds a member to a team
	AddMember(member *models.TeamMember) error

	// FindMember finds an active membership
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListMembershipsByUserID lists all teams a user is a member of
	ListMembershipsByUserID(userID uint64) ([]models.TeamMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// ListAvailableForUser lists open tasks assigned to the user
	ListAvailableForUser(userID uint64) ([]models.Task, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithPersonalTeam creates a user, their personal team, and the
	// corresponding membership within a single transaction.
	CreateWithPersonalTeam(user *models.User, team *models.Team, member *models.TeamMember) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
