package readings

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a missing reading record.
var ErrNotFound = errors.New("readings: not found")

// ValidationError describes a rejected field in a raw reading payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("readings: invalid %s: %s", e.Field, e.Reason)
}
