package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/rpggio/syncus/internal/domain/stream"
)

// StreamRepository implements stream.Repository over the stream table.
// Content is stored exactly as given; encryption happens above this layer.
type StreamRepository struct {
	db *DB
}

// NewStreamRepository creates a new StreamRepository.
func NewStreamRepository(db *DB) *StreamRepository {
	return &StreamRepository{db: db}
}

// Create inserts an entry, assigning an id when it has none.
func (r *StreamRepository) Create(ctx context.Context, e *stream.Entry) error {
	if err := insertEntry(ctx, r.db, r.db.DB, e); err != nil {
		return err
	}
	r.db.notify(ctx, changefeed.Stream, changefeed.OpInsert, e.ID)
	return nil
}

func insertEntry(ctx context.Context, db *DB, ex execer, e *stream.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var preview sql.NullString
	if e.Preview != nil {
		raw, err := json.Marshal(e.Preview)
		if err != nil {
			return fmt.Errorf("failed to encode preview: %w", err)
		}
		preview = sql.NullString{String: string(raw), Valid: true}
	}

	query := `
		INSERT INTO stream (id, user_id, content, type, preview_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.execOn(ctx, ex, query, e.ID, e.AuthorID, e.Content, e.Type, preview, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create stream entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *StreamRepository) List(ctx context.Context, opts stream.ListOptions) ([]stream.Entry, error) {
	query := `
		SELECT id, user_id, content, type, preview_data, created_at
		FROM stream
		ORDER BY created_at DESC, id DESC
	`
	var args []any
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stream: %w", err)
	}
	defer rows.Close()

	entries := []stream.Entry{}
	for rows.Next() {
		var e stream.Entry
		var preview sql.NullString
		var created string
		if err := rows.Scan(&e.ID, &e.AuthorID, &e.Content, &e.Type, &preview, &created); err != nil {
			return nil, fmt.Errorf("failed to scan stream entry: %w", err)
		}
		e.CreatedAt = r.db.rowTime("stream", e.ID, created)
		if preview.Valid && preview.String != "" {
			e.Preview = r.decodePreview(e.ID, preview.String)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stream rows: %w", err)
	}
	return entries, nil
}

// Delete removes an entry.
func (r *StreamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, `DELETE FROM stream WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stream entry: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	r.db.notify(ctx, changefeed.Stream, changefeed.OpDelete, id)
	return nil
}

// decodePreview drops malformed preview data instead of failing the list.
func (r *StreamRepository) decodePreview(id, raw string) *stream.Preview {
	var p stream.Preview
	if err := json.Unmarshal([]byte(raw), &p); err != nil || !p.Valid() {
		r.db.logger.Warn("dropping malformed preview_data", "entry", id, "error", err)
		return nil
	}
	return &p
}
