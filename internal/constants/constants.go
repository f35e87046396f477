package constants

// Session / context keys
const (
	SessionCookieName = "nnp_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "current_user"
)

// Auth
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
