package store

import (
	"context"
	"fmt"
)

// schema is portable between SQLite and Postgres. JSON columns are TEXT.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_protocols (
    user_id TEXT PRIMARY KEY,
    current_status TEXT NOT NULL CHECK(current_status IN ('STEADY', 'ALONE', 'SYNC')),
    updated_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS chapters (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    progress INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
    milestones TEXT NOT NULL DEFAULT '[]',
    consent_status TEXT NOT NULL CHECK(consent_status IN ('PENDING', 'AGREED', 'ALTERNATIVE')),
    alternative_note TEXT NOT NULL DEFAULT '',
    is_finished BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_chapters_created_at ON chapters(created_at)`,
	`CREATE TABLE IF NOT EXISTS stream (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    type TEXT NOT NULL CHECK(type IN ('thought', 'link', 'SYSTEM')),
    preview_data TEXT,
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_stream_created_at ON stream(created_at)`,
	`CREATE TABLE IF NOT EXISTS shared_media (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    imdb_id TEXT NOT NULL,
    poster TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK(status IN ('WATCHLIST', 'WATCHED')),
    type TEXT NOT NULL,
    user_id TEXT NOT NULL,
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_shared_media_created_at ON shared_media(created_at)`,
}

// RunMigrations creates the collections if they do not exist.
func (db *DB) RunMigrations(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}
