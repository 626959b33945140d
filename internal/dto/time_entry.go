package dto

import (
	"time"

	"github.com/chronotrack/time-tracking-api/internal/history"
	"github.com/chronotrack/time-tracking-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TeamDTO is the team summary embedded in entry responses
type TeamDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO is the task summary embedded in entry responses
type TaskDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// CustomFieldDefinitionDTO represents a field definition in API responses
type CustomFieldDefinitionDTO struct {
	ID         uint64            `json:"id"`
	TeamID     *uint64           `json:"team_id"`
	Name       string            `json:"name"`
	Code       string            `json:"code"`
	Type       models.FieldType  `json:"type"`
	Options    models.StringList `json:"options"`
	IsRequired bool              `json:"is_required"`
}

// CustomFieldValueDTO represents a stored field value with its definition
type CustomFieldValueDTO struct {
	ID         uint64                    `json:"id"`
	Value      string                    `json:"value"`
	Definition *CustomFieldDefinitionDTO `json:"definition,omitempty"`
}

// TimeEntryDTO represents a time entry in API responses
type TimeEntryDTO struct {
	ID                uint64                `json:"id"`
	UserID            uint64                `json:"user_id"`
	TeamID            uint64                `json:"team_id"`
	TaskID            *uint64               `json:"task_id"`
	Description       string                `json:"description"`
	StartedAt         time.Time             `json:"started_at"`
	EndedAt           *time.Time            `json:"ended_at"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Team              *TeamDTO              `json:"team,omitempty"`
	Task              *TaskDTO              `json:"task,omitempty"`
	CustomFieldValues []CustomFieldValueDTO `json:"custom_field_values"`
}

// HistoryPageDTO is the paginated entry history response
type HistoryPageDTO struct {
	Data        []TimeEntryDTO `json:"data"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	Total       int64          `json:"total"`
	NextPageURL *string        `json:"next_page_url"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:   team.ID,
		Name: team.Name,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:    task.ID,
		Title: task.Title,
	}
}

// ToCustomFieldDefinitionDTO converts a definition model to its DTO
func ToCustomFieldDefinitionDTO(def models.CustomFieldDefinition) CustomFieldDefinitionDTO {
	return CustomFieldDefinitionDTO{
		ID:         def.ID,
		TeamID:     def.TeamID,
		Name:       def.Name,
		Code:       def.Code,
		Type:       def.Type,
		Options:    def.Options,
		IsRequired: def.IsRequired,
	}
}

// ToTimeEntryDTO converts a TimeEntry model to TimeEntryDTO
func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID:                entry.ID,
		UserID:            entry.UserID,
		TeamID:            entry.TeamID,
		TaskID:            entry.TaskID,
		Description:       entry.Description,
		StartedAt:         entry.StartedAt,
		EndedAt:           entry.EndedAt,
		CreatedAt:         entry.CreatedAt,
		UpdatedAt:         entry.UpdatedAt,
		CustomFieldValues: make([]CustomFieldValueDTO, 0, len(entry.CustomFieldValues)),
	}

	// Include team if preloaded
	if entry.Team.ID != 0 {
		team := ToTeamDTO(entry.Team)
		dto.Team = &team
	}

	// Include task if preloaded
	if entry.Task != nil && entry.Task.ID != 0 {
		task := ToTaskDTO(*entry.Task)
		dto.Task = &task
	}

	for _, value := range entry.CustomFieldValues {
		valueDTO := CustomFieldValueDTO{
			ID:    value.ID,
			Value: value.Value,
		}
		if value.Definition.ID != 0 {
			def := ToCustomFieldDefinitionDTO(value.Definition)
			valueDTO.Definition = &def
		}
		dto.CustomFieldValues = append(dto.CustomFieldValues, valueDTO)
	}

	return dto
}

// ToHistoryPageDTO converts a history page to its response shape
func ToHistoryPageDTO(page history.Page, nextPageURL *string) HistoryPageDTO {
	data := make([]TimeEntryDTO, len(page.Entries))
	for i, entry := range page.Entries {
		data[i] = ToTimeEntryDTO(entry)
	}

	return HistoryPageDTO{
		Data:        data,
		CurrentPage: page.CurrentPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
		NextPageURL: nextPageURL,
	}
}
