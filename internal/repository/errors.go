package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a write is rejected by the store
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when the store cannot be reached
	ErrUnavailable = errors.New("store unavailable")
)
