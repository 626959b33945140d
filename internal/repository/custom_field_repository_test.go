package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/chronotrack/time-tracking-api/internal/models"
)

// setupMockDB wires gorm on top of a mocked SQL connection so the generated
// queries can be asserted without a live database.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestListForTeam_IncludesGlobalDefinitions(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCustomFieldRepository(db)

	rows := sqlmock.NewRows([]string{"id", "team_id", "name", "code", "type", "is_required"}).
		AddRow(1, nil, "Priority", "priority", "select", false).
		AddRow(2, 7, "Client reference", "client_ref", "text", true)

	mock.ExpectQuery("SELECT \\* FROM `custom_field_definitions` WHERE \\(team_id IS NULL OR team_id = \\?\\)").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	definitions, err := repo.ListForTeam(7)

	require.NoError(t, err)
	require.Len(t, definitions, 2)
	assert.Nil(t, definitions[0].TeamID)
	assert.Equal(t, "client_ref", definitions[1].Code)
	assert.True(t, definitions[1].IsRequired)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForTeams_GlobalOnlyWhenNoTeams(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCustomFieldRepository(db)

	rows := sqlmock.NewRows([]string{"id", "team_id", "name", "code", "type", "is_required"}).
		AddRow(1, nil, "Priority", "priority", "select", false)

	mock.ExpectQuery("SELECT \\* FROM `custom_field_definitions` WHERE team_id IS NULL").
		WillReturnRows(rows)

	definitions, err := repo.ListForTeams(nil)

	require.NoError(t, err)
	require.Len(t, definitions, 1)
	assert.Equal(t, "priority", definitions[0].Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForTeams_OrdersByName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCustomFieldRepository(db)

	rows := sqlmock.NewRows([]string{"id", "team_id", "name", "code", "type", "is_required"}).
		AddRow(2, 7, "Billable", "billable", "boolean", false).
		AddRow(1, nil, "Priority", "priority", "select", false)

	mock.ExpectQuery("SELECT \\* FROM `custom_field_definitions` WHERE \\(team_id IS NULL OR team_id IN \\(\\?\\)\\).*ORDER BY name").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	definitions, err := repo.ListForTeams([]uint64{7})

	require.NoError(t, err)
	require.Len(t, definitions, 2)
	assert.Equal(t, models.FieldTypeBoolean, definitions[0].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}
