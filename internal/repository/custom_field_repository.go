package repository

import (
	"github.com/chronotrack/time-tracking-api/internal/models"
	"gorm.io/gorm"
)

// GormCustomFieldRepository is a GORM implementation of CustomFieldRepository
type GormCustomFieldRepository struct {
	db *gorm.DB
}

// NewCustomFieldRepository creates a new CustomFieldRepository
func NewCustomFieldRepository(db *gorm.DB) CustomFieldRepository {
	return &GormCustomFieldRepository{db: db}
}

// ListForTeam resolves the applicable definition set for one team:
// global definitions (team_id IS NULL) plus the team's own.
func (r *GormCustomFieldRepository) ListForTeam(teamID uint64) ([]models.CustomFieldDefinition, error) {
	var definitions []models.CustomFieldDefinition
	err := r.db.
		Where("team_id IS NULL OR team_id = ?", teamID).
		Find(&definitions).Error
	if err != nil {
		return nil, err
	}
	return definitions, nil
}

// ListForTeams resolves definitions applicable to any of the given teams,
// ordered by name for display.
func (r *GormCustomFieldRepository) ListForTeams(teamIDs []uint64) ([]models.CustomFieldDefinition, error) {
	var definitions []models.CustomFieldDefinition
	query := r.db.Order("name")
	if len(teamIDs) > 0 {
		query = query.Where("team_id IS NULL OR team_id IN ?", teamIDs)
	} else {
		query = query.Where("team_id IS NULL")
	}
	if err := query.Find(&definitions).Error; err != nil {
		return nil, err
	}
	return definitions, nil
}

// Create creates a new definition
func (r *GormCustomFieldRepository) Create(def *models.CustomFieldDefinition) error {
	return r.db.Create(def).Error
}
