package domain

import "errors"

// Error kinds raised by the services. The boundary maps them onto transport codes.
// ErrEntityNotFound also covers callers that may not see an existing entity.
var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrNotAvailable     = errors.New("not available")
	ErrUnsupportedState = errors.New("unsupported state")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
)
