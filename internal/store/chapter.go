package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/rpggio/syncus/internal/repository"
)

const chapterColumns = `id, title, progress, milestones, consent_status, alternative_note, is_finished, created_at`

// ChapterRepository implements chapter.Repository over the chapters table.
type ChapterRepository struct {
	db *DB
}

// NewChapterRepository creates a new ChapterRepository.
func NewChapterRepository(db *DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// Create inserts ch, assigning an id when it has none.
func (r *ChapterRepository) Create(ctx context.Context, ch *chapter.Chapter) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	if ch.Milestones == nil {
		ch.Milestones = []chapter.Milestone{}
	}
	milestones, err := json.Marshal(ch.Milestones)
	if err != nil {
		return fmt.Errorf("failed to encode milestones: %w", err)
	}

	query := `INSERT INTO chapters (` + chapterColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.exec(ctx, query,
		ch.ID,
		ch.Title,
		ch.Progress,
		string(milestones),
		ch.ConsentStatus,
		ch.AlternativeNote,
		ch.IsFinished,
		formatTime(ch.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	r.db.notify(ctx, changefeed.Chapter, changefeed.OpInsert, ch.ID)
	return nil
}

// Get retrieves a chapter by id.
func (r *ChapterRepository) Get(ctx context.Context, id string) (*chapter.Chapter, error) {
	row := r.db.queryRow(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, id)
	ch, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return ch, nil
}

// List returns chapters newest first.
func (r *ChapterRepository) List(ctx context.Context, opts chapter.ListOptions) ([]chapter.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapters`
	var args []any
	if opts.Finished != nil {
		query += ` WHERE is_finished = ?`
		args = append(args, *opts.Finished)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []chapter.Chapter{}
	for rows.Next() {
		ch, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chapter rows: %w", err)
	}
	return chapters, nil
}

// Update writes only the fields set in patch.
func (r *ChapterRepository) Update(ctx context.Context, id string, patch chapter.Patch) error {
	if err := r.update(ctx, r.db.DB, id, patch); err != nil {
		return err
	}
	r.db.notify(ctx, changefeed.Chapter, changefeed.OpUpdate, id)
	return nil
}

// UpdateRecorded applies patch and inserts entry in one transaction. Neither
// is visible unless both succeed.
func (r *ChapterRepository) UpdateRecorded(ctx context.Context, id string, patch chapter.Patch, entry *stream.Entry) error {
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.update(ctx, tx, id, patch); err != nil {
			return err
		}
		return insertEntry(ctx, r.db, tx, entry)
	})
	if err != nil {
		return err
	}

	r.db.notify(ctx, changefeed.Chapter, changefeed.OpUpdate, id)
	r.db.notify(ctx, changefeed.Stream, changefeed.OpInsert, entry.ID)
	return nil
}

// Delete removes a chapter.
func (r *ChapterRepository) Delete(ctx context.Context, id string) error {
	if err := r.delete(ctx, r.db.DB, id); err != nil {
		return err
	}
	r.db.notify(ctx, changefeed.Chapter, changefeed.OpDelete, id)
	return nil
}

// DeleteRecorded removes a chapter and inserts entry in one transaction.
func (r *ChapterRepository) DeleteRecorded(ctx context.Context, id string, entry *stream.Entry) error {
	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.delete(ctx, tx, id); err != nil {
			return err
		}
		return insertEntry(ctx, r.db, tx, entry)
	})
	if err != nil {
		return err
	}

	r.db.notify(ctx, changefeed.Chapter, changefeed.OpDelete, id)
	r.db.notify(ctx, changefeed.Stream, changefeed.OpInsert, entry.ID)
	return nil
}

func (r *ChapterRepository) update(ctx context.Context, ex execer, id string, patch chapter.Patch) error {
	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *patch.Progress)
	}
	if patch.Milestones != nil {
		milestones, err := json.Marshal(patch.Milestones)
		if err != nil {
			return fmt.Errorf("failed to encode milestones: %w", err)
		}
		sets = append(sets, "milestones = ?")
		args = append(args, string(milestones))
	}
	if patch.ConsentStatus != nil {
		sets = append(sets, "consent_status = ?")
		args = append(args, *patch.ConsentStatus)
	}
	if patch.AlternativeNote != nil {
		sets = append(sets, "alternative_note = ?")
		args = append(args, *patch.AlternativeNote)
	}
	if patch.IsFinished != nil {
		sets = append(sets, "is_finished = ?")
		args = append(args, *patch.IsFinished)
	}
	if len(sets) == 0 {
		return repository.ErrInvalidInput
	}

	args = append(args, id)
	res, err := r.db.execOn(ctx, ex, `UPDATE chapters SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update chapter: %w", err)
	}
	return requireAffected(res)
}

func (r *ChapterRepository) delete(ctx context.Context, ex execer, id string) error {
	res, err := r.db.execOn(ctx, ex, `DELETE FROM chapters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row. Malformed milestones or timestamps are logged and
// degraded so one bad row never fails a whole list.
func (r *ChapterRepository) scan(s scanner) (*chapter.Chapter, error) {
	var ch chapter.Chapter
	var milestones, created string
	err := s.Scan(
		&ch.ID,
		&ch.Title,
		&ch.Progress,
		&milestones,
		&ch.ConsentStatus,
		&ch.AlternativeNote,
		&ch.IsFinished,
		&created,
	)
	if err != nil {
		return nil, err
	}
	ch.Milestones = []chapter.Milestone{}
	if milestones != "" {
		if err := json.Unmarshal([]byte(milestones), &ch.Milestones); err != nil || ch.Milestones == nil {
			r.db.logger.Warn("dropping malformed milestones", "chapter", ch.ID, "error", err)
			ch.Milestones = []chapter.Milestone{}
		}
	}
	ch.CreatedAt = r.db.rowTime("chapters", ch.ID, created)
	return &ch, nil
}
