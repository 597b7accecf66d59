// Package workspace is the per-party sync controller. It owns the read model,
// keeps it current from change events, and exposes every mutation a party can
// make.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpggio/syncus/internal/changefeed"
	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/rpggio/syncus/internal/readmodel"
)

// Services groups the domain services a controller drives.
type Services struct {
	Status  *status.Service
	Chapter *chapter.Service
	Stream  *stream.Service
	Media   *media.Service
}

// Controller is one party's session over the shared workspace.
type Controller struct {
	identity party.Identity
	svc      Services
	feed     changefeed.Subscriber
	cache    *readmodel.Cache
	logger   *slog.Logger

	mu          sync.Mutex
	active      bool
	initialized bool
	openChapter string

	// applyMu orders snapshot application; the last refresh to finish wins.
	applyMu sync.Mutex
}

// NewController creates a controller for identity. The identity is fixed for
// the controller's lifetime.
func NewController(identity party.Identity, svc Services, feed changefeed.Subscriber, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		identity: identity,
		svc:      svc,
		feed:     feed,
		cache:    readmodel.NewCache(identity),
		logger:   logger.With("party", identity.MyID, "role", identity.Role),
	}
}

// Identity returns the caller's resolved identity.
func (c *Controller) Identity() party.Identity {
	return c.identity
}

// Initialize starts the session. An inactive session does nothing and keeps
// the default state. An active one refreshes once, then subscribes to every
// collection and refreshes on each event. The returned teardown ends the
// subscriptions and lets the controller be initialized again; it is safe to
// call more than once.
func (c *Controller) Initialize(ctx context.Context, active bool) (func(), error) {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil, ErrAlreadyInitialized
	}
	c.initialized = true
	c.mu.Unlock()

	if !active {
		return func() {}, nil
	}

	if err := c.Refresh(ctx); err != nil {
		c.mu.Lock()
		c.initialized = false
		c.mu.Unlock()
		return nil, err
	}

	sessCtx, cancel := context.WithCancel(ctx)
	subs := make([]changefeed.Subscription, 0, len(changefeed.Collections))
	unsubscribeAll := func() {
		cancel()
		for _, s := range subs {
			s.Unsubscribe()
		}
	}

	for _, coll := range changefeed.Collections {
		sub, err := c.feed.Subscribe(sessCtx, coll, c.onChange(sessCtx))
		if err != nil {
			unsubscribeAll()
			c.mu.Lock()
			c.initialized = false
			c.mu.Unlock()
			return nil, fmt.Errorf("subscribing to %s: %w", coll, err)
		}
		subs = append(subs, sub)
	}

	c.mu.Lock()
	c.active = true
	c.mu.Unlock()
	c.logger.Info("workspace session started", "subscriptions", len(subs))

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.active = false
			c.initialized = false
			c.mu.Unlock()
			unsubscribeAll()
			c.logger.Info("workspace session ended")
		})
	}, nil
}

func (c *Controller) onChange(ctx context.Context) changefeed.Handler {
	return func(ev changefeed.Event) {
		if err := c.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("refresh after change event failed", "collection", ev.Collection, "error", err)
		}
	}
}

// Refresh fetches all collections concurrently and replaces the read model in
// one step. On any failure the read model is left as it was. When refreshes
// overlap, the one that completes last is what the view shows.
func (c *Controller) Refresh(ctx context.Context) error {
	var snap readmodel.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := c.svc.Status.List(gctx)
		snap.Statuses = recs
		return err
	})
	g.Go(func() error {
		chapters, err := c.svc.Chapter.List(gctx, chapter.ListOptions{})
		snap.Chapters = chapters
		return err
	})
	g.Go(func() error {
		entries, err := c.svc.Stream.List(gctx, stream.ListOptions{})
		snap.Stream = entries
		return err
	})
	g.Go(func() error {
		entries, err := c.svc.Media.List(gctx)
		snap.Media = entries
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refreshing workspace: %w", err)
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	snap.RefreshedAt = time.Now()
	c.cache.Replace(snap)
	return nil
}

// View returns the current derived state.
func (c *Controller) View() readmodel.View {
	return c.cache.View()
}

// UpdateStatus sets the caller's status. The new value is visible immediately
// and is reconciled by the next refresh; no refresh is triggered here.
func (c *Controller) UpdateStatus(ctx context.Context, to status.Status) error {
	if err := c.requireActive(); err != nil {
		return err
	}
	if err := status.Validate(to); err != nil {
		return err
	}
	c.cache.SetTentative(to)
	return c.svc.Status.Set(ctx, c.identity.MyID, to)
}

// PostNote publishes a note to the stream.
func (c *Controller) PostNote(ctx context.Context, text string) (*stream.Entry, error) {
	if err := c.requireActive(); err != nil {
		return nil, err
	}
	entry, err := c.svc.Stream.Post(ctx, c.identity.MyID, text)
	if err != nil {
		return nil, err
	}
	c.refreshAfterWrite(ctx, "post_note")
	return entry, nil
}

// DeleteNote removes a stream entry.
func (c *Controller) DeleteNote(ctx context.Context, id string) error {
	return c.mutate(ctx, "delete_note", func() error {
		return c.svc.Stream.Delete(ctx, id)
	})
}

// CreateChapter creates a PENDING chapter.
func (c *Controller) CreateChapter(ctx context.Context, title string) (*chapter.Chapter, error) {
	if err := c.requireActive(); err != nil {
		return nil, err
	}
	ch, err := c.svc.Chapter.Create(ctx, chapter.CreateRequest{Title: title})
	if err != nil {
		return nil, err
	}
	c.refreshAfterWrite(ctx, "create_chapter")
	return ch, nil
}

// UpdateChapter applies a routine edit.
func (c *Controller) UpdateChapter(ctx context.Context, id string, edit chapter.Edit) error {
	return c.mutate(ctx, "update_chapter", func() error {
		return c.svc.Chapter.Update(ctx, id, edit)
	})
}

// SetConsent records the caller's consent decision on a chapter.
func (c *Controller) SetConsent(ctx context.Context, id string, to chapter.ConsentStatus, note string) error {
	return c.mutate(ctx, "set_consent", func() error {
		_, err := c.svc.Chapter.SetConsent(ctx, chapter.ConsentRequest{
			ActorID: c.identity.MyID,
			ID:      id,
			To:      to,
			Note:    note,
		})
		return err
	})
}

// AddMilestone appends a checklist item to a chapter.
func (c *Controller) AddMilestone(ctx context.Context, chapterID, text, date string) error {
	return c.mutate(ctx, "add_milestone", func() error {
		_, err := c.svc.Chapter.AddMilestone(ctx, chapterID, text, date)
		return err
	})
}

// ToggleMilestone flips one milestone's done flag.
func (c *Controller) ToggleMilestone(ctx context.Context, chapterID string, milestoneID int64) error {
	return c.mutate(ctx, "toggle_milestone", func() error {
		return c.svc.Chapter.ToggleMilestone(ctx, chapterID, milestoneID)
	})
}

// RemoveMilestone drops one milestone.
func (c *Controller) RemoveMilestone(ctx context.Context, chapterID string, milestoneID int64) error {
	return c.mutate(ctx, "remove_milestone", func() error {
		return c.svc.Chapter.RemoveMilestone(ctx, chapterID, milestoneID)
	})
}

// ScheduleMilestone sets or clears one milestone's date.
func (c *Controller) ScheduleMilestone(ctx context.Context, chapterID string, milestoneID int64, date string) error {
	return c.mutate(ctx, "schedule_milestone", func() error {
		return c.svc.Chapter.ScheduleMilestone(ctx, chapterID, milestoneID, date)
	})
}

// SetFinished archives or reopens a chapter.
func (c *Controller) SetFinished(ctx context.Context, id string, finished bool) error {
	return c.mutate(ctx, "set_finished", func() error {
		return c.svc.Chapter.SetFinished(ctx, id, finished)
	})
}

// DeleteChapter terminates a chapter. confirmed must be true.
func (c *Controller) DeleteChapter(ctx context.Context, id string, confirmed bool) error {
	return c.mutate(ctx, "delete_chapter", func() error {
		if err := c.svc.Chapter.Delete(ctx, chapter.DeleteRequest{
			ActorID:   c.identity.MyID,
			ID:        id,
			Confirmed: confirmed,
		}); err != nil {
			return err
		}
		c.mu.Lock()
		if c.openChapter == id {
			c.openChapter = ""
		}
		c.mu.Unlock()
		return nil
	})
}

// SearchMedia looks up watchlist candidates. It does not touch the store.
func (c *Controller) SearchMedia(ctx context.Context, query string) ([]media.Candidate, error) {
	return c.svc.Media.Search(ctx, query)
}

// AddMedia puts a candidate on the shared watchlist.
func (c *Controller) AddMedia(ctx context.Context, candidate media.Candidate) error {
	return c.mutate(ctx, "add_media", func() error {
		_, err := c.svc.Media.Add(ctx, c.identity.MyID, candidate)
		return err
	})
}

// ToggleMedia flips an entry between WATCHLIST and WATCHED.
func (c *Controller) ToggleMedia(ctx context.Context, id string) error {
	return c.mutate(ctx, "toggle_media", func() error {
		_, err := c.svc.Media.Toggle(ctx, id)
		return err
	})
}

// DeleteMedia removes a watchlist entry.
func (c *Controller) DeleteMedia(ctx context.Context, id string) error {
	return c.mutate(ctx, "delete_media", func() error {
		return c.svc.Media.Delete(ctx, id)
	})
}

// OpenChapter selects the chapter shown in the detail view.
func (c *Controller) OpenChapter(id string) error {
	if _, ok := c.cache.Chapter(id); !ok {
		return chapter.ErrChapterNotFound
	}
	c.mu.Lock()
	c.openChapter = id
	c.mu.Unlock()
	return nil
}

// CloseChapter clears the detail view.
func (c *Controller) CloseChapter() {
	c.mu.Lock()
	c.openChapter = ""
	c.mu.Unlock()
}

// ActiveChapter returns the chapter in the detail view as of the last
// refresh. A chapter deleted by either party is no longer active.
func (c *Controller) ActiveChapter() (chapter.Chapter, bool) {
	c.mu.Lock()
	id := c.openChapter
	c.mu.Unlock()
	if id == "" {
		return chapter.Chapter{}, false
	}
	return c.cache.Chapter(id)
}

// CalendarURL returns a calendar template link for a cached chapter.
func (c *Controller) CalendarURL(id string) (string, error) {
	ch, ok := c.cache.Chapter(id)
	if !ok {
		return "", chapter.ErrChapterNotFound
	}
	return chapter.CalendarURL(ch), nil
}

// mutate runs a write and refreshes only if it succeeded.
func (c *Controller) mutate(ctx context.Context, op string, write func() error) error {
	if err := c.requireActive(); err != nil {
		return err
	}
	if err := write(); err != nil {
		return err
	}
	c.refreshAfterWrite(ctx, op)
	return nil
}

// refreshAfterWrite refreshes after a committed write. A failure is logged;
// the write stands and the next change event retries.
func (c *Controller) refreshAfterWrite(ctx context.Context, op string) {
	if err := c.Refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Warn("refresh after write failed", "op", op, "error", err)
	}
}

func (c *Controller) requireActive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return ErrInactive
	}
	return nil
}
