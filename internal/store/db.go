// Package store is the remote store client: SQL-backed collections for
// statuses, chapters, the stream and the shared watchlist. Committed writes
// are announced on a changefeed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/syncus/internal/changefeed"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB wraps a database connection for one dialect.
type DB struct {
	*sql.DB
	dialect Dialect
	feed    changefeed.Publisher
	logger  *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithPublisher announces committed writes on p.
func WithPublisher(p changefeed.Publisher) Option {
	return func(db *DB) { db.feed = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// Open connects to dsn with the given dialect.
func Open(dialect Dialect, dsn string, opts ...Option) (*DB, error) {
	var driver string
	switch dialect {
	case SQLite:
		driver = "sqlite"
	case Postgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported store driver %q", dialect)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		// :memory: databases are per-connection
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	db := &DB{DB: conn, dialect: dialect, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Dialect reports the SQL dialect in use.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// rebind rewrites ? placeholders to $n for postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.execOn(ctx, db.DB, query, args...)
}

func (db *DB) execOn(ctx context.Context, ex execer, query string, args ...any) (sql.Result, error) {
	return ex.ExecContext(ctx, db.rebind(query), args...)
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.rebind(query), args...)
}

// notify publishes a change event. Publish failures are logged; the write
// has already committed.
func (db *DB) notify(ctx context.Context, c changefeed.Collection, op changefeed.Op, id string) {
	if db.feed == nil {
		return
	}
	ev := changefeed.Event{Collection: c, Op: op, ID: id, At: time.Now()}
	if err := db.feed.Publish(ctx, ev); err != nil {
		db.logger.Warn("change event not published", "collection", c, "op", op, "id", id, "error", err)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// rowTime parses a stored timestamp. A malformed value becomes the zero time
// and is logged; the rest of the row is kept.
func (db *DB) rowTime(table, id, raw string) time.Time {
	t, err := parseTime(raw)
	if err != nil {
		db.logger.Warn("malformed timestamp", "table", table, "id", id, "error", err)
		return time.Time{}
	}
	return t
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
