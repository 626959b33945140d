package services

import (
	"fmt"
	"time"

	"github.com/chronotrack/time-tracking-api/internal/constants"
	"github.com/chronotrack/time-tracking-api/internal/customfields"
	"github.com/chronotrack/time-tracking-api/internal/history"
	"github.com/chronotrack/time-tracking-api/internal/repository"
)

var historySortColumns = map[string]bool{
	"description": true,
	"started_at":  true,
	"ended_at":    true,
}

// HistoryService provides filtered, sorted, paginated retrieval of a
// user's entry history.
type HistoryService struct {
	entryRepo repository.TimeEntryRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(entryRepo repository.TimeEntryRepository) *HistoryService {
	return &HistoryService{entryRepo: entryRepo}
}

// HistoryInput represents history query filters. StartDate and EndDate are
// calendar dates; when only StartDate is given the range is that single
// day.
type HistoryInput struct {
	UserID    uint64
	StartDate *time.Time
	EndDate   *time.Time
	Sort      string
	Direction string
	Page      int
}

// History returns one page of the user's entries, eagerly loaded with
// task, team and custom field values. Page size is fixed at 30. The
// NextPageURL on the returned page is left nil; the HTTP layer fills it in
// from the request URL.
func (s *HistoryService) History(input HistoryInput) (*history.Page, error) {
	sortColumn := input.Sort
	if sortColumn == "" {
		sortColumn = "started_at"
	}
	direction := input.Direction
	if direction == "" {
		direction = "desc"
	}

	verrs := customfields.ValidationErrors{}
	if !historySortColumns[sortColumn] {
		verrs.Add("sort", "The selected sort is invalid.")
	}
	if direction != "asc" && direction != "desc" {
		verrs.Add("direction", "The selected direction is invalid.")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		verrs.Add("end_date", "The end_date must be a date after or equal to start_date.")
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	page := input.Page
	if page < constants.MinPage {
		page = constants.MinPage
	}

	filter := repository.TimeEntryFilter{
		UserID:        input.UserID,
		SortColumn:    sortColumn,
		SortDirection: direction,
		Page:          page,
		PageSize:      constants.HistoryPageSize,
	}

	// The date range is inclusive on calendar days: [start 00:00, end+1d).
	if input.StartDate != nil {
		from := startOfDay(*input.StartDate)
		filter.StartedFrom = &from

		end := *input.StartDate
		if input.EndDate != nil {
			end = *input.EndDate
		}
		before := startOfDay(end).Add(24 * time.Hour)
		filter.StartedBefore = &before
	}

	entries, total, err := s.entryRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	return &history.Page{
		Entries:     entries,
		CurrentPage: page,
		PerPage:     constants.HistoryPageSize,
		Total:       total,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
