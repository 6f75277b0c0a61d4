package constants

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyBooking   = "booking"
	ContextKeyMilestone = "milestone"
	ContextKeyTask      = "task"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	SessionCookieName = "booking_session"
	MinPasswordLength = 8
)
