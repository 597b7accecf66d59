package media

import "errors"

var (
	// ErrEntryNotFound indicates the media entry doesn't exist.
	ErrEntryNotFound = errors.New("media entry not found")
	// ErrInvalidInput indicates invalid input for media operations.
	ErrInvalidInput = errors.New("invalid media input")
	// ErrSearchUnavailable indicates no media lookup is configured.
	ErrSearchUnavailable = errors.New("media search not configured")
)
