package status

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Service handles status reads and writes.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new status service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Set writes the party's status, creating the record on first write.
func (s *Service) Set(ctx context.Context, partyID string, to Status) error {
	if strings.TrimSpace(partyID) == "" {
		return ErrInvalidInput
	}
	if err := Validate(to); err != nil {
		return err
	}
	rec := &Record{PartyID: partyID, CurrentStatus: to, UpdatedAt: time.Now()}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upserting status: %w", err)
	}
	s.logger.Debug("status updated", "party", partyID, "status", to)
	return nil
}

// List returns every status record.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}
	return recs, nil
}
