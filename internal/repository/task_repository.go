package repository

import (
	"github.com/chronotrack/time-tracking-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListAvailableForUser lists open tasks assigned to the user, ordered by
// title. Done and archived tasks are excluded from the picker.
func (r *GormTaskRepository) ListAvailableForUser(userID uint64) ([]models.Task, error) {
	var tasks []models.Task

	assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
		Select("1").
		Where("task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID).
		Where("task_assignments.deleted_at IS NULL")

	err := r.db.Model(&models.Task{}).
		Where("EXISTS (?)", assignmentSubQuery).
		Where("tasks.status NOT IN ?", []models.TaskStatus{models.TaskStatusDone, models.TaskStatusArchived}).
		Order("tasks.title").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}
