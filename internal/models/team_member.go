package models

import (
	"time"

	"gorm.io/gorm"
)

type TeamRole string

const (
	RoleOwner  TeamRole = "owner"
	RoleMember TeamRole = "member"
)

// TeamMember is the membership pivot between users and teams. Memberships
// are soft-deleted so leaving a team keeps the historical record.
type TeamMember struct {
	TeamID    uint64         `gorm:"primarykey" json:"team_id"`
	UserID    uint64         `gorm:"primarykey" json:"user_id"`
	Role      TeamRole       `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt  time.Time      `json:"joined_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
