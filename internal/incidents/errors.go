package incidents

import "errors"

// Validation errors.
var (
	ErrMissingFields   = errors.New("title, description, and severity are required")
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrInvalidID       = errors.New("invalid incident id format")
)

// Repository errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	// ErrInvalidInput is returned when the store rejects a write.
	ErrInvalidInput = errors.New("invalid incident input")
)
