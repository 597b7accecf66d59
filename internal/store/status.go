package store

import (
	"context"
	"fmt"

	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/rpggio/syncus/internal/domain/status"
)

// StatusRepository implements status.Repository over user_protocols.
type StatusRepository struct {
	db *DB
}

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(db *DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// List returns every status record.
func (r *StatusRepository) List(ctx context.Context) ([]status.Record, error) {
	rows, err := r.db.query(ctx, `SELECT user_id, current_status, updated_at FROM user_protocols`)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}
	defer rows.Close()

	var records []status.Record
	for rows.Next() {
		var rec status.Record
		var updated string
		if err := rows.Scan(&rec.PartyID, &rec.CurrentStatus, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		rec.UpdatedAt = r.db.rowTime("user_protocols", rec.PartyID, updated)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status rows: %w", err)
	}
	return records, nil
}

// Upsert writes the party's status, creating the row on first use.
func (r *StatusRepository) Upsert(ctx context.Context, rec *status.Record) error {
	query := `
		INSERT INTO user_protocols (user_id, current_status, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET current_status = excluded.current_status, updated_at = excluded.updated_at
	`
	if _, err := r.db.exec(ctx, query, rec.PartyID, rec.CurrentStatus, formatTime(rec.UpdatedAt)); err != nil {
		return fmt.Errorf("failed to upsert status: %w", err)
	}
	r.db.notify(ctx, changefeed.Status, changefeed.OpUpdate, rec.PartyID)
	return nil
}
