package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeSelect  FieldType = "select"
)

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// CustomFieldDefinition describes an attribute attachable to time entries.
// A nil TeamID makes the definition global: it applies to every team.
type CustomFieldDefinition struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	TeamID     *uint64        `gorm:"index" json:"team_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Code       string         `gorm:"type:varchar(255);not null;index" json:"code"`
	Type       FieldType      `gorm:"type:varchar(20);not null;index" json:"type"`
	Options    StringList     `gorm:"type:json" json:"options"`
	IsRequired bool           `gorm:"not null;default:false" json:"is_required"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Team   *Team                       `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Values []TimeEntryCustomFieldValue `gorm:"foreignKey:CustomFieldDefinitionID" json:"-"`
}

// AppliesTo reports whether the definition is in scope for the given team.
func (d *CustomFieldDefinition) AppliesTo(teamID uint64) bool {
	return d.TeamID == nil || *d.TeamID == teamID
}
