package status

import "errors"

var (
	// ErrInvalidStatus indicates a value outside STEADY/ALONE/SYNC.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidInput indicates a missing party id.
	ErrInvalidInput = errors.New("invalid status input")
)
