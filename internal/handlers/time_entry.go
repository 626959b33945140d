package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chronotrack/time-tracking-api/internal/customfields"
	"github.com/chronotrack/time-tracking-api/internal/dto"
	apierrors "github.com/chronotrack/time-tracking-api/internal/errors"
	"github.com/chronotrack/time-tracking-api/internal/middleware"
	"github.com/chronotrack/time-tracking-api/internal/repository"
	"github.com/chronotrack/time-tracking-api/internal/services"
	"github.com/chronotrack/time-tracking-api/internal/utils"
)

// TimeEntryHandler coordinates the time tracking HTTP surface.
type TimeEntryHandler struct {
	entryService   *services.TimeEntryService
	historyService *services.HistoryService
	teamService    *services.TeamService
	taskRepo       repository.TaskRepository
	fieldRepo      repository.CustomFieldRepository
}

// NewTimeEntryHandler creates a new TimeEntryHandler
func NewTimeEntryHandler(
	entryService *services.TimeEntryService,
	historyService *services.HistoryService,
	teamService *services.TeamService,
	taskRepo repository.TaskRepository,
	fieldRepo repository.CustomFieldRepository,
) *TimeEntryHandler {
	return &TimeEntryHandler{
		entryService:   entryService,
		historyService: historyService,
		teamService:    teamService,
		taskRepo:       taskRepo,
		fieldRepo:      fieldRepo,
	}
}

// List returns the paginated entry history together with the active timer
// and everything the tracking UI needs: available teams, open tasks and
// the resolved custom field definitions for the user's teams.
func (h *TimeEntryHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	verrs := customfields.ValidationErrors{}

	startDate, ok := parseDateQuery(c, "start_date")
	if !ok {
		verrs.Add("start_date", "The start_date does not match the format YYYY-MM-DD.")
	}
	endDate, ok := parseDateQuery(c, "end_date")
	if !ok {
		verrs.Add("end_date", "The end_date does not match the format YYYY-MM-DD.")
	}
	if len(verrs) > 0 {
		apierrors.ValidationFailed(c, verrs)
		return
	}

	params := utils.GetPaginationParams(c)

	page, err := h.historyService.History(services.HistoryInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
		Sort:      c.Query("sort"),
		Direction: c.Query("direction"),
		Page:      params.Page,
	})
	if err != nil {
		respondTimeEntryError(c, err)
		return
	}

	nextPageURL := utils.NextPageURL(c.Request.URL, page.CurrentPage, page.PerPage, page.Total)

	activeTimer, err := h.entryService.ActiveTimer(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch active timer")
		return
	}

	memberships, err := h.teamService.ListTeamsForUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch teams")
		return
	}

	teamIDs := make([]uint64, 0, len(memberships))
	availableTeams := make([]dto.TeamDTO, 0, len(memberships))
	for _, m := range memberships {
		teamIDs = append(teamIDs, m.TeamID)
		availableTeams = append(availableTeams, dto.ToTeamDTO(m.Team))
	}

	tasks, err := h.taskRepo.ListAvailableForUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}
	availableTasks := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		availableTasks[i] = dto.ToTaskDTO(task)
	}

	definitions, err := h.fieldRepo.ListForTeams(teamIDs)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch custom field definitions")
		return
	}
	definitionDTOs := make([]dto.CustomFieldDefinitionDTO, len(definitions))
	for i, def := range definitions {
		definitionDTOs[i] = dto.ToCustomFieldDefinitionDTO(def)
	}

	lastTeamID, err := h.entryService.LastTeamID(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch last team")
		return
	}

	var activeTimerDTO *dto.TimeEntryDTO
	if activeTimer != nil {
		d := dto.ToTimeEntryDTO(*activeTimer)
		activeTimerDTO = &d
	}

	c.JSON(http.StatusOK, gin.H{
		"time_entries":             dto.ToHistoryPageDTO(*page, nextPageURL),
		"active_timer":             activeTimerDTO,
		"available_teams":          availableTeams,
		"available_tasks":          availableTasks,
		"custom_field_definitions": definitionDTOs,
		"last_team_id":             lastTeamID,
		"filters": gin.H{
			"start_date": c.Query("start_date"),
			"end_date":   c.Query("end_date"),
			"sort":       c.Query("sort"),
			"direction":  c.Query("direction"),
		},
	})
}

// Create starts a new time entry. Omitting started_at starts the timer
// now; omitting ended_at leaves it running.
func (h *TimeEntryHandler) Create(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTimeEntryRequest struct {
		Description  string         `json:"description"`
		TeamID       uint64         `json:"team_id"`
		TaskID       *uint64        `json:"task_id"`
		StartedAt    *time.Time     `json:"started_at"`
		EndedAt      *time.Time     `json:"ended_at"`
		CustomFields map[string]any `json:"custom_fields"`
	}

	var req CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.entryService.Start(services.StartTimeEntryInput{
		UserID:       userID,
		TeamID:       req.TeamID,
		TaskID:       req.TaskID,
		Description:  req.Description,
		StartedAt:    req.StartedAt,
		EndedAt:      req.EndedAt,
		CustomFields: customfields.Payload(req.CustomFields),
	})
	if err != nil {
		respondTimeEntryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry))
}

// Update applies a partial update. The raw JSON is inspected so an
// explicit `"ended_at": null` (clear the end, reviving the timer) can be
// distinguished from an absent key.
func (h *TimeEntryHandler) Update(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	entry, ok := middleware.GetTimeEntry(c)
	if !ok {
		apierrors.InternalError(c, "Time entry not found in context")
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTimeEntryInput{ActorID: userID}
	verrs := customfields.ValidationErrors{}

	if v, ok := rawReq["description"]; ok {
		if s, ok := v.(string); ok {
			input.Description = &s
		}
	}
	if v, ok := rawReq["team_id"]; ok {
		if f, ok := v.(float64); ok {
			teamID := uint64(f)
			input.TeamID = &teamID
		}
	}
	if v, ok := rawReq["task_id"]; ok {
		if v == nil {
			input.ClearTaskID = true
		} else if f, ok := v.(float64); ok {
			taskID := uint64(f)
			input.TaskID = &taskID
		}
	}
	if v, ok := rawReq["started_at"]; ok && v != nil {
		if t, ok := parseTimestamp(v); ok {
			input.StartedAt = &t
		} else {
			verrs.Add("started_at", "The started_at is not a valid date.")
		}
	}
	if v, ok := rawReq["ended_at"]; ok {
		if v == nil {
			input.ClearEndedAt = true
		} else if t, ok := parseTimestamp(v); ok {
			input.EndedAt = &t
		} else {
			verrs.Add("ended_at", "The ended_at is not a valid date.")
		}
	}
	if v, ok := rawReq["custom_fields"]; ok && v != nil {
		if m, ok := v.(map[string]any); ok {
			input.CustomFields = customfields.Payload(m)
		}
	}

	if len(verrs) > 0 {
		apierrors.ValidationFailed(c, verrs)
		return
	}

	updated, err := h.entryService.Update(entry.ID, input)
	if err != nil {
		respondTimeEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*updated))
}

// Stop stops a running entry
func (h *TimeEntryHandler) Stop(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	entry, ok := middleware.GetTimeEntry(c)
	if !ok {
		apierrors.InternalError(c, "Time entry not found in context")
		return
	}

	stopped, err := h.entryService.Stop(entry.ID, userID)
	if err != nil {
		respondTimeEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*stopped))
}

// Delete removes an entry and its custom field values
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	entry, ok := middleware.GetTimeEntry(c)
	if !ok {
		apierrors.InternalError(c, "Time entry not found in context")
		return
	}

	if err := h.entryService.Delete(entry.ID, userID); err != nil {
		respondTimeEntryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Time entry deleted successfully",
	})
}

func respondTimeEntryError(c *gin.Context, err error) {
	var verrs customfields.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		apierrors.ValidationFailed(c, verrs)
	case errors.Is(err, services.ErrNotTeamMember):
		apierrors.Forbidden(c, "You are not a member of this team")
	case errors.Is(err, services.ErrNotEntryOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTimeEntryNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTimerAlreadyStopped):
		apierrors.Conflict(c, "This timer is already stopped")
	default:
		apierrors.InternalError(c, "")
	}
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. The second
// return value is false when the parameter is present but malformed.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
