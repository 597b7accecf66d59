package chapter

import "time"

// ConsentStatus is the two-party agreement state on a chapter's plan.
type ConsentStatus string

const (
	ConsentPending     ConsentStatus = "PENDING"
	ConsentAgreed      ConsentStatus = "AGREED"
	ConsentAlternative ConsentStatus = "ALTERNATIVE"
)

// Milestone is one checklist item embedded in a chapter. Ids are unique
// within the chapter and increase in insertion order.
type Milestone struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Date string `json:"date,omitempty"`
	Done bool   `json:"done"`
}

// Chapter is a jointly editable goal with a checklist and a consent status.
type Chapter struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Progress        int           `json:"progress"`
	Milestones      []Milestone   `json:"milestones"`
	ConsentStatus   ConsentStatus `json:"consent_status"`
	AlternativeNote string        `json:"alternative_note,omitempty"`
	IsFinished      bool          `json:"is_finished"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Clone returns a copy that shares no milestone storage with c.
func (c Chapter) Clone() Chapter {
	if c.Milestones != nil {
		c.Milestones = append([]Milestone(nil), c.Milestones...)
	}
	return c
}

// Milestone returns the milestone with the given id.
func (c Chapter) Milestone(id int64) (Milestone, bool) {
	for _, m := range c.Milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// Edit is a routine change: title, progress, checklist or finished flag.
// Nil fields are left unchanged. Routine edits never touch consent.
type Edit struct {
	Title      *string
	Progress   *int
	Milestones []Milestone
	IsFinished *bool
}

// Patch is the partial update written to the store.
type Patch struct {
	Title           *string
	Progress        *int
	Milestones      []Milestone
	ConsentStatus   *ConsentStatus
	AlternativeNote *string
	IsFinished      *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Progress == nil && p.Milestones == nil &&
		p.ConsentStatus == nil && p.AlternativeNote == nil && p.IsFinished == nil
}

// Apply returns c with the patch applied.
func (p Patch) Apply(c Chapter) Chapter {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Progress != nil {
		c.Progress = *p.Progress
	}
	if p.Milestones != nil {
		c.Milestones = append([]Milestone{}, p.Milestones...)
	}
	if p.ConsentStatus != nil {
		c.ConsentStatus = *p.ConsentStatus
	}
	if p.AlternativeNote != nil {
		c.AlternativeNote = *p.AlternativeNote
	}
	if p.IsFinished != nil {
		c.IsFinished = *p.IsFinished
	}
	return c
}

func (e Edit) patch() Patch {
	return Patch{
		Title:      e.Title,
		Progress:   e.Progress,
		Milestones: e.Milestones,
		IsFinished: e.IsFinished,
	}
}

// Split partitions chapters into active and finished, preserving order.
func Split(chapters []Chapter) (active, finished []Chapter) {
	for _, c := range chapters {
		if c.IsFinished {
			finished = append(finished, c)
		} else {
			active = append(active, c)
		}
	}
	return active, finished
}
