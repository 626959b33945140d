// Package authz consolidates the ownership and membership checks that gate
// every mutating time entry operation into a single policy collaborator.
package authz

import (
	"errors"

	"github.com/chronotrack/time-tracking-api/internal/models"
	"github.com/chronotrack/time-tracking-api/internal/repository"
	"gorm.io/gorm"
)

// TimeEntryPolicy answers "can user U perform action A on entry E".
type TimeEntryPolicy interface {
	// CanModify reports whether the user may edit or stop the entry.
	CanModify(userID uint64, entry *models.TimeEntry) bool

	// CanDelete reports whether the user may delete the entry.
	CanDelete(userID uint64, entry *models.TimeEntry) bool

	// IsMember reports whether the user has an active membership in the team.
	IsMember(userID, teamID uint64) (bool, error)
}

type policy struct {
	teamRepo repository.TeamRepository
}

// NewTimeEntryPolicy creates the default policy: entries are exclusively
// owned by their creating user.
func NewTimeEntryPolicy(teamRepo repository.TeamRepository) TimeEntryPolicy {
	return &policy{teamRepo: teamRepo}
}

func (p *policy) CanModify(userID uint64, entry *models.TimeEntry) bool {
	return entry.UserID == userID
}

func (p *policy) CanDelete(userID uint64, entry *models.TimeEntry) bool {
	return entry.UserID == userID
}

func (p *policy) IsMember(userID, teamID uint64) (bool, error) {
	_, err := p.teamRepo.FindMember(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
