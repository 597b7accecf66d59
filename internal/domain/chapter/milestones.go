package chapter

import (
	"strings"
	"time"
)

// NextMilestoneID returns an id greater than every existing id. It tracks
// wall-clock milliseconds so ids from both parties stay roughly ordered.
func NextMilestoneID(existing []Milestone, now time.Time) int64 {
	next := now.UnixMilli()
	for _, m := range existing {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	return next
}

// AddMilestone appends a new, not-done milestone.
func AddMilestone(existing []Milestone, text, date string, now time.Time) ([]Milestone, Milestone, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Milestone{}, ErrInvalidInput
	}
	if err := ValidateDate(date); err != nil {
		return nil, Milestone{}, err
	}
	m := Milestone{ID: NextMilestoneID(existing, now), Text: text, Date: date}
	out := make([]Milestone, 0, len(existing)+1)
	out = append(out, existing...)
	return append(out, m), m, nil
}

// ToggleMilestone flips done on one milestone and leaves the rest untouched.
func ToggleMilestone(existing []Milestone, id int64) ([]Milestone, error) {
	return updateMilestone(existing, id, func(m *Milestone) { m.Done = !m.Done })
}

// ScheduleMilestone sets or clears a milestone date.
func ScheduleMilestone(existing []Milestone, id int64, date string) ([]Milestone, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	return updateMilestone(existing, id, func(m *Milestone) { m.Date = date })
}

// RemoveMilestone drops one milestone. The result is never nil.
func RemoveMilestone(existing []Milestone, id int64) ([]Milestone, error) {
	out := make([]Milestone, 0, len(existing))
	found := false
	for _, m := range existing {
		if m.ID == id {
			found = true
			continue
		}
		out = append(out, m)
	}
	if !found {
		return nil, ErrMilestoneNotFound
	}
	return out, nil
}

// DoneRatio returns the share of done milestones as a 0-100 percentage.
// Progress may be seeded from it but is never recomputed from it.
func DoneRatio(milestones []Milestone) int {
	if len(milestones) == 0 {
		return 0
	}
	done := 0
	for _, m := range milestones {
		if m.Done {
			done++
		}
	}
	return done * 100 / len(milestones)
}

func updateMilestone(existing []Milestone, id int64, fn func(*Milestone)) ([]Milestone, error) {
	out := make([]Milestone, len(existing))
	copy(out, existing)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			return out, nil
		}
	}
	return nil, ErrMilestoneNotFound
}
