package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []changefeed.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev changefeed.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []changefeed.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]changefeed.Event(nil), p.events...)
}

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()

	db, err := Open(SQLite, ":memory:", opts...)
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations(context.Background())
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"user_protocols", "chapters", "stream", "shared_media"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// idempotent
	require.NoError(t, db.RunMigrations(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	sqlite := &DB{dialect: SQLite}
	pg := &DB{dialect: Postgres}
	q := `UPDATE chapters SET title = ?, progress = ? WHERE id = ?`

	require.Equal(t, q, sqlite.rebind(q))
	require.Equal(t, `UPDATE chapters SET title = $1, progress = $2 WHERE id = $3`, pg.rebind(q))
}

func TestNotify_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	db := NewTestDB(t, WithPublisher(pub))
	repo := NewStreamRepository(db)

	require.NoError(t, repo.Create(context.Background(), newEntry("p-1", "sealed")))
	require.Len(t, pub.Events(), 1)
}
