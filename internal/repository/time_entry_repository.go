package repository

import (
	"fmt"

	"github.com/chronotrack/time-tracking-api/internal/database"
	"github.com/chronotrack/time-tracking-api/internal/models"
	"github.com/chronotrack/time-tracking-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTimeEntryRepository is a GORM implementation of TimeEntryRepository
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new TimeEntryRepository
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// CreateWithValues inserts the entry and its value rows atomically
func (r *GormTimeEntryRepository) CreateWithValues(entry *models.TimeEntry, values []models.TimeEntryCustomFieldValue) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create time entry: %w", err)
		}

		if len(values) == 0 {
			return nil
		}

		for i := range values {
			values[i].TimeEntryID = entry.ID
		}

		if err := tx.Create(&values).Error; err != nil {
			return fmt.Errorf("create custom field values: %w", err)
		}

		return nil
	})
}

// FindByID finds a time entry by ID with optional preloading
func (r *GormTimeEntryRepository) FindByID(id uint64, preload ...string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&entry, id).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

// List retrieves a user's entries with filtering, sorting and pagination.
// The sort column is whitelisted by the service; a non-primary sort always
// falls back to started_at DESC as a secondary order so pages are stable.
func (r *GormTimeEntryRepository) List(filter TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	var entries []models.TimeEntry

	query := r.db.Model(&models.TimeEntry{}).Where("time_entries.user_id = ?", filter.UserID)

	if filter.StartedFrom != nil {
		query = query.Where("time_entries.started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedBefore != nil {
		query = query.Where("time_entries.started_at < ?", *filter.StartedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order(fmt.Sprintf("time_entries.%s %s", filter.SortColumn, filter.SortDirection))
	if filter.SortColumn != "started_at" {
		listQuery = listQuery.Order("time_entries.started_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	err := listQuery.
		Preload("Task").
		Preload("Team").
		Preload("CustomFieldValues").
		Preload("CustomFieldValues.Definition").
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Update persists changes to an entry
func (r *GormTimeEntryRepository) Update(entry *models.TimeEntry) error {
	return r.db.Save(entry).Error
}

// SaveWithValues saves the entry and upserts the given value rows in one
// transaction. The upsert relies on the unique (time_entry_id,
// custom_field_definition_id) index, so concurrent updates to the same
// entry converge instead of creating duplicates.
func (r *GormTimeEntryRepository) SaveWithValues(entry *models.TimeEntry, values []models.TimeEntryCustomFieldValue) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("save time entry: %w", err)
		}

		if len(values) == 0 {
			return nil
		}

		for i := range values {
			values[i].TimeEntryID = entry.ID
		}

		err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "time_entry_id"}, {Name: "custom_field_definition_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).
			Create(&values).Error
		if err != nil {
			return fmt.Errorf("upsert custom field values: %w", err)
		}

		return nil
	})
}

// Delete removes an entry and its value rows in a transaction
func (r *GormTimeEntryRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("time_entry_id = ?", id).Delete(&models.TimeEntryCustomFieldValue{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.TimeEntry{}, id).Error
	})
}

// FindRunning returns the user's running entry with relations preloaded
func (r *GormTimeEntryRepository) FindRunning(userID uint64) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.
		Preload("Task").
		Preload("Team").
		Preload("CustomFieldValues").
		Preload("CustomFieldValues.Definition").
		Where("user_id = ? AND ended_at IS NULL", userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindLatest returns the user's most recently created entry
func (r *GormTimeEntryRepository) FindLatest(userID uint64) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountValues counts stored custom field value rows for an entry
func (r *GormTimeEntryRepository) CountValues(entryID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TimeEntryCustomFieldValue{}).
		Where("time_entry_id = ?", entryID).
		Count(&count).Error
	return count, err
}
