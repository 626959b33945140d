// Package history defines the paginated history page shape and the
// incremental accumulator contract consumed by "load more" clients.
package history

import (
	"github.com/chronotrack/time-tracking-api/internal/models"
)

// Page is one page of a user's entry history plus pagination metadata.
// NextPageURL is nil on the last page.
type Page struct {
	Entries     []models.TimeEntry `json:"data"`
	CurrentPage int                `json:"current_page"`
	PerPage     int                `json:"per_page"`
	Total       int64              `json:"total"`
	NextPageURL *string            `json:"next_page_url"`
}

// Accumulator merges successive pages into a stable local buffer: page one
// replaces the buffer, later pages append only entries whose id has not
// been seen, so the accumulated list never contains duplicates even when
// rows shift between pages under a fixed filter set.
type Accumulator struct {
	entries     []models.TimeEntry
	seen        map[uint64]struct{}
	nextPageURL *string
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[uint64]struct{})}
}

// Apply merges a received page and advances the next-page pointer.
func (a *Accumulator) Apply(page Page) {
	if page.CurrentPage == 1 {
		a.entries = a.entries[:0]
		a.seen = make(map[uint64]struct{}, len(page.Entries))
	}

	for _, entry := range page.Entries {
		if _, ok := a.seen[entry.ID]; ok {
			continue
		}
		a.seen[entry.ID] = struct{}{}
		a.entries = append(a.entries, entry)
	}

	a.nextPageURL = page.NextPageURL
}

// Entries returns the accumulated entries in arrival order.
func (a *Accumulator) Entries() []models.TimeEntry {
	return a.entries
}

// HasNextPage reports whether another page can be loaded.
func (a *Accumulator) HasNextPage() bool {
	return a.nextPageURL != nil
}

// NextPageURL returns the cursor for the next page, or nil at the end.
func (a *Accumulator) NextPageURL() *string {
	return a.nextPageURL
}
