package settings

import "errors"

var (
	// ErrNoStore indicates the provider has no backing store.
	ErrNoStore = errors.New("settings: no store configured")
	// ErrUnknownKey indicates an override key that is not recognized.
	ErrUnknownKey = errors.New("settings: unknown key")
	// ErrNotFound indicates a missing setting row.
	ErrNotFound = errors.New("settings: not found")
)
