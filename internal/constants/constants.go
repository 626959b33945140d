package constants

// ContextKeyUserID is the key under which the authenticated user ID is
// stored in both the session and the gin context.
const ContextKeyUserID = "user_id"

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "tracking_session"

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HistoryPageSize is the fixed page size of the time-tracking history
	// listing. Clients accumulate pages incrementally ("load more").
	HistoryPageSize = 30
)

// MaxDescriptionLength bounds time entry descriptions and text-typed
// custom field values (TEXT column capacity).
const MaxDescriptionLength = 65535

const MinPasswordLength = 8
