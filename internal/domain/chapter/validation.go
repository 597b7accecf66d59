package chapter

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ValidateTitle rejects blank titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ValidateProgress enforces the 0-100 range.
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return ErrInvalidInput
	}
	return nil
}

// ValidateDate accepts "" or a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidInput
	}
	return nil
}

// ValidateMilestones checks ids are unique and every item has text.
func ValidateMilestones(milestones []Milestone) error {
	seen := make(map[int64]struct{}, len(milestones))
	for _, m := range milestones {
		if strings.TrimSpace(m.Text) == "" {
			return ErrInvalidInput
		}
		if err := ValidateDate(m.Date); err != nil {
			return err
		}
		if _, dup := seen[m.ID]; dup {
			return ErrInvalidInput
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}

// ValidateEdit validates a routine edit.
func ValidateEdit(e Edit) error {
	if e.Title != nil {
		if err := ValidateTitle(*e.Title); err != nil {
			return err
		}
	}
	if e.Progress != nil {
		if err := ValidateProgress(*e.Progress); err != nil {
			return err
		}
	}
	if e.Milestones != nil {
		if err := ValidateMilestones(e.Milestones); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConsent validates a requested consent transition. AGREED may be set
// from any state. ALTERNATIVE needs a non-blank note. PENDING is only ever the
// initial state.
func ValidateConsent(to ConsentStatus, note string) error {
	switch to {
	case ConsentAgreed:
		return nil
	case ConsentAlternative:
		if strings.TrimSpace(note) == "" {
			return ErrMissingNote
		}
		return nil
	default:
		return ErrInvalidTransition
	}
}
