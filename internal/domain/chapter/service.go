package chapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/syncus/internal/repository"
)

// Service handles chapter business logic. Consent changes and deletions are
// governance events and leave a SYSTEM entry in the stream; routine edits
// leave nothing.
type Service struct {
	chapters Repository
	feed     SystemFeed
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new chapter service.
func NewService(chapters Repository, feed SystemFeed, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		chapters: chapters,
		feed:     feed,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateRequest describes a chapter creation request.
type CreateRequest struct {
	Title      string
	Milestones []string
}

// ConsentRequest describes a consent transition request.
type ConsentRequest struct {
	ActorID string
	ID      string
	To      ConsentStatus
	Note    string
}

// DeleteRequest describes a chapter termination request.
type DeleteRequest struct {
	ActorID   string
	ID        string
	Confirmed bool
}

// Create creates a PENDING chapter. Initial milestones seed progress.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Chapter, error) {
	if err := ValidateTitle(req.Title); err != nil {
		return nil, err
	}

	now := s.now()
	milestones := []Milestone{}
	for _, text := range req.Milestones {
		var err error
		milestones, _, err = AddMilestone(milestones, text, "", now)
		if err != nil {
			return nil, err
		}
	}

	ch := &Chapter{
		Title:         strings.TrimSpace(req.Title),
		Progress:      DoneRatio(milestones),
		Milestones:    milestones,
		ConsentStatus: ConsentPending,
		CreatedAt:     now,
	}
	if err := s.chapters.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("creating chapter: %w", err)
	}
	return ch, nil
}

// Get returns a chapter by ID.
func (s *Service) Get(ctx context.Context, id string) (*Chapter, error) {
	ch, err := s.chapters.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("getting chapter: %w", err)
	}
	return ch, nil
}

// List returns chapters newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Chapter, error) {
	chapters, err := s.chapters.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}
	return chapters, nil
}

// Update applies a routine edit.
func (s *Service) Update(ctx context.Context, id string, edit Edit) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := ValidateEdit(edit); err != nil {
		return err
	}
	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		edit.Title = &title
	}
	patch := edit.patch()
	if patch.IsEmpty() {
		return nil
	}
	return s.write(ctx, id, patch)
}

// SetFinished archives or reopens a chapter.
func (s *Service) SetFinished(ctx context.Context, id string, finished bool) error {
	return s.Update(ctx, id, Edit{IsFinished: &finished})
}

// AddMilestone appends a checklist item.
func (s *Service) AddMilestone(ctx context.Context, id, text, date string) (*Milestone, error) {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	milestones, added, err := AddMilestone(ch.Milestones, text, date, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, id, Patch{Milestones: milestones}); err != nil {
		return nil, err
	}
	return &added, nil
}

// ToggleMilestone flips one milestone's done flag.
func (s *Service) ToggleMilestone(ctx context.Context, id string, milestoneID int64) error {
	return s.editMilestones(ctx, id, func(ms []Milestone) ([]Milestone, error) {
		return ToggleMilestone(ms, milestoneID)
	})
}

// ScheduleMilestone sets or clears one milestone's date.
func (s *Service) ScheduleMilestone(ctx context.Context, id string, milestoneID int64, date string) error {
	return s.editMilestones(ctx, id, func(ms []Milestone) ([]Milestone, error) {
		return ScheduleMilestone(ms, milestoneID, date)
	})
}

// RemoveMilestone drops one milestone.
func (s *Service) RemoveMilestone(ctx context.Context, id string, milestoneID int64) error {
	return s.editMilestones(ctx, id, func(ms []Milestone) ([]Milestone, error) {
		return RemoveMilestone(ms, milestoneID)
	})
}

// SetConsent records an AGREED or ALTERNATIVE decision and appends one SYSTEM
// entry naming the chapter. The chapter change and the entry commit together.
// Re-stating the current decision changes nothing and records nothing.
func (s *Service) SetConsent(ctx context.Context, req ConsentRequest) (*Chapter, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrInvalidInput
	}
	if err := ValidateConsent(req.To, req.Note); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	to := req.To
	note := strings.TrimSpace(req.Note)
	if current.ConsentStatus == to && (to != ConsentAlternative || current.AlternativeNote == note) {
		s.logger.Debug("consent unchanged", "chapter", req.ID, "status", to)
		return current, nil
	}

	patch := Patch{ConsentStatus: &to}
	summary := fmt.Sprintf("Chapter %q marked %s", current.Title, to)
	if to == ConsentAlternative {
		patch.AlternativeNote = &note
		summary = fmt.Sprintf("Chapter %q marked %s: %s", current.Title, to, note)
	}

	entry, err := s.feed.Compose(req.ActorID, summary)
	if err != nil {
		return nil, err
	}
	if err := s.chapters.UpdateRecorded(ctx, req.ID, patch, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("recording consent change: %w", err)
	}

	s.logger.Info("consent changed", "chapter", req.ID, "from", current.ConsentStatus, "to", to, "actor", req.ActorID)
	updated := patch.Apply(*current)
	return &updated, nil
}

// Delete terminates a chapter. It is irreversible and requires confirmation.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return ErrInvalidInput
	}
	if !req.Confirmed {
		return ErrConfirmationRequired
	}

	current, err := s.Get(ctx, req.ID)
	if err != nil {
		return err
	}
	entry, err := s.feed.Compose(req.ActorID, fmt.Sprintf("Chapter %q terminated", current.Title))
	if err != nil {
		return err
	}

	if err := s.chapters.DeleteRecorded(ctx, req.ID, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChapterNotFound
		}
		return fmt.Errorf("deleting chapter: %w", err)
	}

	s.logger.Info("chapter deleted", "chapter", req.ID, "actor", req.ActorID)
	return nil
}

func (s *Service) editMilestones(ctx context.Context, id string, fn func([]Milestone) ([]Milestone, error)) error {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	milestones, err := fn(ch.Milestones)
	if err != nil {
		return err
	}
	return s.write(ctx, id, Patch{Milestones: milestones})
}

func (s *Service) write(ctx context.Context, id string, patch Patch) error {
	if err := s.chapters.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChapterNotFound
		}
		return fmt.Errorf("updating chapter: %w", err)
	}
	return nil
}
