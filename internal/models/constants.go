package models

const (
	// HeaderUserID carries the acting user id on every API call.
	HeaderUserID = "X-Sharer-User-Id"

	DefaultPageFrom = 0
	DefaultPageSize = 20
	MaxPageFrom     = 50
	MaxPageSize     = 50

	// DefaultBookingLimit bookings a single user may create per window.
	DefaultBookingLimit = 30

	// DefaultBookingLimitWindow in seconds.
	DefaultBookingLimitWindow = 60

	UnsupportedStateMessage = "Unknown state: UNSUPPORTED_STATUS"
)
