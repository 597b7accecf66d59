package chapter

import "errors"

var (
	// ErrChapterNotFound indicates the chapter doesn't exist.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrMilestoneNotFound indicates the milestone id is not in the chapter.
	ErrMilestoneNotFound = errors.New("milestone not found")
	// ErrInvalidInput indicates invalid input for chapter operations.
	ErrInvalidInput = errors.New("invalid chapter input")
	// ErrInvalidTransition indicates a consent transition that is not allowed.
	ErrInvalidTransition = errors.New("invalid consent transition")
	// ErrMissingNote indicates ALTERNATIVE was requested without a note.
	ErrMissingNote = errors.New("alternative note required")
	// ErrConfirmationRequired indicates deletion was not confirmed.
	ErrConfirmationRequired = errors.New("chapter deletion requires confirmation")
)
