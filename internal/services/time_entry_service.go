package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chronotrack/time-tracking-api/internal/authz"
	"github.com/chronotrack/time-tracking-api/internal/constants"
	"github.com/chronotrack/time-tracking-api/internal/customfields"
	"github.com/chronotrack/time-tracking-api/internal/models"
	"github.com/chronotrack/time-tracking-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotTeamMember       = errors.New("user is not a member of the team")
	ErrTimeEntryNotFound   = errors.New("time entry not found")
	ErrNotEntryOwner       = errors.New("only the entry owner can perform this action")
	ErrTimerAlreadyStopped = errors.New("timer is already stopped")
)

// entryPreloads are the relations eagerly loaded on entry responses.
var entryPreloads = []string{"Task", "Team", "CustomFieldValues", "CustomFieldValues.Definition"}

// TimeEntryService handles the time entry lifecycle and the dynamic
// custom field validation/storage flow.
type TimeEntryService struct {
	entryRepo repository.TimeEntryRepository
	fieldRepo repository.CustomFieldRepository
	taskRepo  repository.TaskRepository
	policy    authz.TimeEntryPolicy
}

// NewTimeEntryService creates a new TimeEntryService
func NewTimeEntryService(
	entryRepo repository.TimeEntryRepository,
	fieldRepo repository.CustomFieldRepository,
	taskRepo repository.TaskRepository,
	policy authz.TimeEntryPolicy,
) *TimeEntryService {
	return &TimeEntryService{
		entryRepo: entryRepo,
		fieldRepo: fieldRepo,
		taskRepo:  taskRepo,
		policy:    policy,
	}
}

// StartTimeEntryInput represents input for creating (starting) an entry.
// A nil EndedAt starts a running timer.
type StartTimeEntryInput struct {
	UserID       uint64
	TeamID       uint64
	TaskID       *uint64
	Description  string
	StartedAt    *time.Time
	EndedAt      *time.Time
	CustomFields customfields.Payload
}

// UpdateTimeEntryInput represents a partial update. Pointer fields are
// applied only when non-nil; the Clear flags distinguish an explicit JSON
// null from an absent key.
type UpdateTimeEntryInput struct {
	ActorID      uint64
	Description  *string
	TeamID       *uint64
	TaskID       *uint64
	ClearTaskID  bool
	StartedAt    *time.Time
	EndedAt      *time.Time
	ClearEndedAt bool
	CustomFields customfields.Payload
}

// Start validates the input against the team's resolved field definitions
// and inserts the entry plus its custom field values in one transaction.
// No rows are written when validation fails.
func (s *TimeEntryService) Start(input StartTimeEntryInput) (*models.TimeEntry, error) {
	verrs := customfields.ValidationErrors{}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		verrs.Add("description", "The description field is required.")
	} else if len(description) > constants.MaxDescriptionLength {
		verrs.Add("description", fmt.Sprintf("The description may not be greater than %d characters.", constants.MaxDescriptionLength))
	}

	if input.TeamID == 0 {
		verrs.Add("team_id", "The team_id field is required.")
		return nil, verrs
	}

	member, err := s.policy.IsMember(input.UserID, input.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify team membership: %w", err)
	}
	if !member {
		return nil, ErrNotTeamMember
	}

	if input.TaskID != nil {
		if _, err := s.taskRepo.FindByID(*input.TaskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verrs.Add("task_id", "The selected task_id is invalid.")
			} else {
				return nil, fmt.Errorf("failed to verify task: %w", err)
			}
		}
	}

	startedAt := time.Now()
	if input.StartedAt != nil {
		startedAt = *input.StartedAt
	}
	if input.EndedAt != nil && input.EndedAt.Before(startedAt) {
		verrs.Add("ended_at", "The ended_at must be a date after or equal to started_at.")
	}

	definitions, err := s.fieldRepo.ListForTeam(input.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve custom field definitions: %w", err)
	}

	verrs.Merge(customfields.Validate(definitions, input.CustomFields, customfields.ModeCreate))
	if len(verrs) > 0 {
		return nil, verrs
	}

	entry := &models.TimeEntry{
		UserID:      input.UserID,
		TeamID:      input.TeamID,
		TaskID:      input.TaskID,
		Description: description,
		StartedAt:   startedAt,
		EndedAt:     input.EndedAt,
	}

	values := buildCreateValues(definitions, input.CustomFields)

	if err := s.entryRepo.CreateWithValues(entry, values); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	return s.entryRepo.FindByID(entry.ID, entryPreloads...)
}

// Update applies a partial update to an owned entry and upserts the custom
// field values present in the payload. Keys absent from the payload leave
// prior stored values untouched.
func (s *TimeEntryService) Update(entryID uint64, input UpdateTimeEntryInput) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}

	if !s.policy.CanModify(input.ActorID, entry) {
		return nil, ErrNotEntryOwner
	}

	verrs := customfields.ValidationErrors{}

	if input.TeamID != nil && *input.TeamID != entry.TeamID {
		member, err := s.policy.IsMember(input.ActorID, *input.TeamID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify team membership: %w", err)
		}
		if !member {
			return nil, ErrNotTeamMember
		}
		entry.TeamID = *input.TeamID
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			verrs.Add("description", "The description field is required.")
		} else if len(description) > constants.MaxDescriptionLength {
			verrs.Add("description", fmt.Sprintf("The description may not be greater than %d characters.", constants.MaxDescriptionLength))
		} else {
			entry.Description = description
		}
	}

	if input.ClearTaskID {
		entry.TaskID = nil
	} else if input.TaskID != nil {
		if _, err := s.taskRepo.FindByID(*input.TaskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verrs.Add("task_id", "The selected task_id is invalid.")
			} else {
				return nil, fmt.Errorf("failed to verify task: %w", err)
			}
		} else {
			entry.TaskID = input.TaskID
		}
	}

	if input.StartedAt != nil {
		entry.StartedAt = *input.StartedAt
	}
	if input.ClearEndedAt {
		entry.EndedAt = nil
	} else if input.EndedAt != nil {
		entry.EndedAt = input.EndedAt
	}

	if entry.EndedAt != nil && entry.EndedAt.Before(entry.StartedAt) {
		verrs.Add("ended_at", "The ended_at must be a date after or equal to started_at.")
	}

	definitions, err := s.fieldRepo.ListForTeam(entry.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve custom field definitions: %w", err)
	}

	verrs.Merge(customfields.Validate(definitions, input.CustomFields, customfields.ModeUpdate))
	if len(verrs) > 0 {
		return nil, verrs
	}

	values := buildUpdateValues(definitions, input.CustomFields)

	if err := s.entryRepo.SaveWithValues(entry, values); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	return s.entryRepo.FindByID(entry.ID, entryPreloads...)
}

// Stop sets ended_at on a running entry. Stopping an already stopped entry
// fails with ErrTimerAlreadyStopped and never mutates the row.
func (s *TimeEntryService) Stop(entryID, actorID uint64) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}

	if !s.policy.CanModify(actorID, entry) {
		return nil, ErrNotEntryOwner
	}

	if entry.EndedAt != nil {
		return nil, ErrTimerAlreadyStopped
	}

	now := time.Now()
	entry.EndedAt = &now

	if err := s.entryRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to stop time entry: %w", err)
	}

	return entry, nil
}

// Delete removes an owned entry together with its custom field value rows.
func (s *TimeEntryService) Delete(entryID, actorID uint64) error {
	entry, err := s.entryRepo.FindByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeEntryNotFound
		}
		return fmt.Errorf("failed to find time entry: %w", err)
	}

	if !s.policy.CanDelete(actorID, entry) {
		return ErrNotEntryOwner
	}

	if err := s.entryRepo.Delete(entryID); err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	return nil
}

// ActiveTimer returns the user's running entry, or nil when none exists.
func (s *TimeEntryService) ActiveTimer(userID uint64) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindRunning(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find running entry: %w", err)
	}
	return entry, nil
}

// LastTeamID returns the team of the user's most recent entry, or nil.
func (s *TimeEntryService) LastTeamID(userID uint64) (*uint64, error) {
	entry, err := s.entryRepo.FindLatest(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest entry: %w", err)
	}
	teamID := entry.TeamID
	return &teamID, nil
}

// buildCreateValues maps payload keys to value rows on the create path.
// Unknown codes and empty values are skipped, not stored.
func buildCreateValues(definitions []models.CustomFieldDefinition, payload customfields.Payload) []models.TimeEntryCustomFieldValue {
	byCode := definitionsByCode(definitions)

	var values []models.TimeEntryCustomFieldValue
	for code, raw := range payload {
		def, ok := byCode[code]
		if !ok {
			continue
		}
		if raw == nil {
			continue
		}
		if s, ok := raw.(string); ok && s == "" {
			continue
		}
		values = append(values, models.TimeEntryCustomFieldValue{
			CustomFieldDefinitionID: def.ID,
			Value:                   customfields.Encode(def.Type, raw),
		})
	}
	return values
}

// buildUpdateValues maps payload keys to upsert rows on the update path.
// Every present key with a known code is written, replacing the prior
// value; booleans encode to "1"/"0".
func buildUpdateValues(definitions []models.CustomFieldDefinition, payload customfields.Payload) []models.TimeEntryCustomFieldValue {
	byCode := definitionsByCode(definitions)

	var values []models.TimeEntryCustomFieldValue
	for code, raw := range payload {
		def, ok := byCode[code]
		if !ok {
			continue
		}
		values = append(values, models.TimeEntryCustomFieldValue{
			CustomFieldDefinitionID: def.ID,
			Value:                   customfields.Encode(def.Type, raw),
		})
	}
	return values
}

func definitionsByCode(definitions []models.CustomFieldDefinition) map[string]models.CustomFieldDefinition {
	byCode := make(map[string]models.CustomFieldDefinition, len(definitions))
	for _, def := range definitions {
		byCode[def.Code] = def
	}
	return byCode
}
