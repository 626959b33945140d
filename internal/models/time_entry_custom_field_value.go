package models

import (
	"time"
)

// TimeEntryCustomFieldValue holds one field value for one entry. The value
// is always stored as text regardless of the definition's logical type;
// booleans are canonicalized to "1"/"0" before storage. The composite
// unique index guarantees at most one row per (entry, definition) pair even
// under concurrent upserts.
type TimeEntryCustomFieldValue struct {
	ID                      uint64    `gorm:"primarykey" json:"id"`
	TimeEntryID             uint64    `gorm:"not null;uniqueIndex:idx_entry_definition" json:"time_entry_id"`
	CustomFieldDefinitionID uint64    `gorm:"not null;uniqueIndex:idx_entry_definition" json:"custom_field_definition_id"`
	Value                   string    `gorm:"type:text;not null" json:"value"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`

	// Relations
	TimeEntry  TimeEntry             `gorm:"foreignKey:TimeEntryID" json:"-"`
	Definition CustomFieldDefinition `gorm:"foreignKey:CustomFieldDefinitionID" json:"definition,omitempty"`
}
