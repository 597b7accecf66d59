package workspace

import "errors"

var (
	// ErrInactive is returned by mutations on a controller whose session was
	// never initialized as active, or was torn down.
	ErrInactive = errors.New("workspace session is not active")
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("workspace session already initialized")
)
