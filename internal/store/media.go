package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/repository"
)

const mediaColumns = `id, title, imdb_id, poster, status, type, user_id, created_at`

// MediaRepository implements media.Repository over shared_media.
type MediaRepository struct {
	db *DB
}

// NewMediaRepository creates a new MediaRepository.
func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts an entry, assigning an id when it has none.
func (r *MediaRepository) Create(ctx context.Context, e *media.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `INSERT INTO shared_media (` + mediaColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.exec(ctx, query,
		e.ID,
		e.Title,
		e.ExternalID,
		e.Poster,
		e.Status,
		e.Type,
		e.AuthorID,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create media entry: %w", err)
	}

	r.db.notify(ctx, changefeed.Media, changefeed.OpInsert, e.ID)
	return nil
}

// Get retrieves an entry by id.
func (r *MediaRepository) Get(ctx context.Context, id string) (*media.Entry, error) {
	row := r.db.queryRow(ctx, `SELECT `+mediaColumns+` FROM shared_media WHERE id = ?`, id)
	e, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media entry: %w", err)
	}
	return e, nil
}

// List returns every entry newest first.
func (r *MediaRepository) List(ctx context.Context) ([]media.Entry, error) {
	rows, err := r.db.query(ctx, `SELECT `+mediaColumns+` FROM shared_media ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	entries := []media.Entry{}
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media rows: %w", err)
	}
	return entries, nil
}

// Update writes the fields set in patch.
func (r *MediaRepository) Update(ctx context.Context, id string, patch media.Patch) error {
	if patch.Status == nil {
		return repository.ErrInvalidInput
	}
	res, err := r.db.exec(ctx, `UPDATE shared_media SET status = ? WHERE id = ?`, *patch.Status, id)
	if err != nil {
		return fmt.Errorf("failed to update media entry: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	r.db.notify(ctx, changefeed.Media, changefeed.OpUpdate, id)
	return nil
}

// Delete removes an entry.
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, `DELETE FROM shared_media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media entry: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	r.db.notify(ctx, changefeed.Media, changefeed.OpDelete, id)
	return nil
}

func (r *MediaRepository) scan(s scanner) (*media.Entry, error) {
	var e media.Entry
	var created string
	err := s.Scan(&e.ID, &e.Title, &e.ExternalID, &e.Poster, &e.Status, &e.Type, &e.AuthorID, &created)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = r.db.rowTime("shared_media", e.ID, created)
	return &e, nil
}
