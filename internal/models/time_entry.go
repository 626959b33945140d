package models

import (
	"time"
)

// TimeEntry is a single logged block of work. An entry with a nil EndedAt
// is a running timer.
type TimeEntry struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	UserID      uint64     `gorm:"not null;index" json:"user_id"`
	TeamID      uint64     `gorm:"not null;index" json:"team_id"`
	TaskID      *uint64    `gorm:"index" json:"task_id"`
	Description string     `gorm:"type:text;not null" json:"description"`
	StartedAt   time.Time  `gorm:"not null;index" json:"started_at"`
	EndedAt     *time.Time `gorm:"index" json:"ended_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	User              User                        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Team              Team                        `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Task              *Task                       `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	CustomFieldValues []TimeEntryCustomFieldValue `gorm:"foreignKey:TimeEntryID;constraint:OnDelete:CASCADE" json:"custom_field_values,omitempty"`
}

// Running reports whether the entry is an active timer.
func (e *TimeEntry) Running() bool {
	return e.EndedAt == nil
}
