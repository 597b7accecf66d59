package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/syncus/internal/repository"
)

// Service handles feed entries. Content is encrypted on the way in and
// decrypted on the way out.
type Service struct {
	entries  Repository
	cipher   Cipher
	previews LinkPreviewer
	logger   *slog.Logger
}

// NewService creates a new stream service. previews may be nil.
func NewService(entries Repository, cipher Cipher, previews LinkPreviewer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		entries:  entries,
		cipher:   cipher,
		previews: previews,
		logger:   logger,
	}
}

// Post publishes a note or link authored by authorID. A URL in the text makes
// it a link entry; the preview lookup is best-effort and never blocks the post.
func (s *Service) Post(ctx context.Context, authorID, text string) (*Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyContent
	}
	if strings.TrimSpace(authorID) == "" {
		return nil, ErrInvalidInput
	}

	entryType := TypeThought
	var preview *Preview
	if link := FirstURL(text); link != "" {
		entryType = TypeLink
		preview = s.lookupPreview(ctx, link)
	}

	sealed, err := s.cipher.Encrypt(text)
	if err != nil {
		return nil, fmt.Errorf("encrypting content: %w", err)
	}

	entry := &Entry{
		AuthorID:  authorID,
		Content:   sealed,
		Type:      entryType,
		Preview:   preview,
		CreatedAt: time.Now(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating stream entry: %w", err)
	}

	entry.Content = text
	return entry, nil
}

// Compose seals a SYSTEM entry without writing it. Callers compose before
// their own write so a missing secret stops the whole operation, then store
// the entry alongside that write.
func (s *Service) Compose(authorID, summary string) (*Entry, error) {
	if strings.TrimSpace(summary) == "" {
		return nil, ErrEmptyContent
	}
	sealed, err := s.cipher.Encrypt(summary)
	if err != nil {
		return nil, fmt.Errorf("encrypting system entry: %w", err)
	}
	return &Entry{
		AuthorID:  authorID,
		Content:   sealed,
		Type:      TypeSystem,
		CreatedAt: time.Now(),
	}, nil
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
		return fmt.Errorf("deleting stream entry: %w", err)
	}
	return nil
}

// List returns entries newest first with content decrypted. Entries that fail
// to decrypt carry a sentinel instead of aborting the list.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	entries, err := s.entries.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing stream: %w", err)
	}
	for i := range entries {
		entries[i].Content = s.cipher.Decrypt(entries[i].Content)
	}
	return entries, nil
}

func (s *Service) lookupPreview(ctx context.Context, link string) *Preview {
	if s.previews == nil {
		return nil
	}
	preview, err := s.previews.Preview(ctx, link)
	if err != nil {
		s.logger.Warn("link preview failed", "url", link, "error", err)
		return nil
	}
	if preview == nil {
		return nil
	}
	if preview.URL == "" {
		preview.URL = link
	}
	if !preview.Valid() {
		s.logger.Warn("discarding malformed link preview", "url", link)
		return nil
	}
	return preview
}
