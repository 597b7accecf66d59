package stream

import "errors"

var (
	// ErrEntryNotFound indicates the entry doesn't exist.
	ErrEntryNotFound = errors.New("stream entry not found")
	// ErrEmptyContent indicates a post with no text.
	ErrEmptyContent = errors.New("stream entry content is empty")
	// ErrInvalidInput indicates invalid input for stream operations.
	ErrInvalidInput = errors.New("invalid stream input")
)
