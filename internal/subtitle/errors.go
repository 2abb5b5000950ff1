package subtitle

import "errors"

var (
	// rejected at the store boundary, never silently corrected
	ErrInvalidRange = errors.New("invalid time range")

	// mutation targeted an unknown cue id; recoverable
	ErrNotFound = errors.New("subtitle not found")
)
