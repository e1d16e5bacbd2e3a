package alerts

import "errors"

var (
	// ErrNotFound indicates a missing alert record.
	ErrNotFound = errors.New("alerts: not found")
	// ErrInvalidSeverity indicates an unknown severity value.
	ErrInvalidSeverity = errors.New("alerts: invalid severity")
)
