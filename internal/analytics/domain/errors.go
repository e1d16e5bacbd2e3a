package analytics

import "errors"

var (
	// ErrNotFound indicates a missing summary record.
	ErrNotFound = errors.New("analytics: summary not found")
	// ErrNoData indicates a day without readings to summarize.
	ErrNoData = errors.New("analytics: no readings for date")
	// ErrInvalidDate indicates a malformed summary date key.
	ErrInvalidDate = errors.New("analytics: invalid date")
)
