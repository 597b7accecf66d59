package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/syncus/internal/repository"
)

const (
	minQueryLen   = 3
	maxCandidates = 5
	defaultType   = "movie"
)

// Service handles the shared watchlist.
type Service struct {
	entries  Repository
	searcher Searcher
	logger   *slog.Logger
}

// NewService creates a new media service. searcher may be nil.
func NewService(entries Repository, searcher Searcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{entries: entries, searcher: searcher, logger: logger}
}

// Search returns up to five distinct candidates. Queries shorter than three
// characters return nothing without calling out.
func (s *Service) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLen {
		return nil, nil
	}
	if s.searcher == nil {
		return nil, ErrSearchUnavailable
	}

	found, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching media: %w", err)
	}

	seen := make(map[string]struct{}, len(found))
	out := make([]Candidate, 0, maxCandidates)
	for _, c := range found {
		if _, dup := seen[c.ExternalID]; dup {
			continue
		}
		seen[c.ExternalID] = struct{}{}
		out = append(out, c)
		if len(out) == maxCandidates {
			break
		}
	}
	return out, nil
}

// Add puts a candidate on the watchlist.
func (s *Service) Add(ctx context.Context, authorID string, c Candidate) (*Entry, error) {
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.ExternalID) == "" {
		return nil, ErrInvalidInput
	}
	poster := c.Poster
	if poster == "N/A" {
		poster = ""
	}
	kind := c.Type
	if kind == "" {
		kind = defaultType
	}

	entry := &Entry{
		Title:      strings.TrimSpace(c.Title),
		ExternalID: c.ExternalID,
		Poster:     poster,
		Status:     StatusWatchlist,
		Type:       kind,
		AuthorID:   authorID,
		CreatedAt:  time.Now(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating media entry: %w", err)
	}
	return entry, nil
}

// Toggle flips WATCHLIST and WATCHED.
func (s *Service) Toggle(ctx context.Context, id string) (Status, error) {
	current, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrEntryNotFound
		}
		return "", fmt.Errorf("getting media entry: %w", err)
	}
	next := current.Status.Toggle()
	if err := s.entries.Update(ctx, id, Patch{Status: &next}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrEntryNotFound
		}
		return "", fmt.Errorf("updating media entry: %w", err)
	}
	return next, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("deleting media entry: %w", err)
	}
	return nil
}

// List returns every entry newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	return entries, nil
}
