// Package readmodel holds the last-fetched snapshot of every collection and
// derives the values presented to a party.
package readmodel

import (
	"sync"
	"time"

	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
)

// Snapshot is one complete fetch of all collections. Stream content is
// plaintext.
type Snapshot struct {
	Statuses    []status.Record
	Chapters    []chapter.Chapter
	Stream      []stream.Entry
	Media       []media.Entry
	RefreshedAt time.Time
}

// Cache owns the current snapshot. Writers replace it whole; readers get
// copies.
type Cache struct {
	mu        sync.RWMutex
	identity  party.Identity
	snap      Snapshot
	loaded    bool
	tentative *status.Status
}

// NewCache creates an empty cache for one party.
func NewCache(identity party.Identity) *Cache {
	return &Cache{identity: identity}
}

// Identity returns the party the cache derives values for.
func (c *Cache) Identity() party.Identity {
	return c.identity
}

// Replace installs s as the current snapshot and drops any tentative status.
func (c *Cache) Replace(s Snapshot) {
	s = s.clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = s
	c.loaded = true
	c.tentative = nil
}

// SetTentative records an optimistic value for the caller's own status. It
// holds until the next Replace.
func (c *Cache) SetTentative(s status.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tentative = &s
}

// Loaded reports whether a snapshot has been installed.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Snapshot returns a copy of the current snapshot.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

// Chapter returns a copy of one cached chapter.
func (c *Cache) Chapter(id string) (chapter.Chapter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.snap.Chapters {
		if ch.ID == id {
			return ch.Clone(), true
		}
	}
	return chapter.Chapter{}, false
}

// View derives the presented values from the current snapshot.
func (c *Cache) View() View {
	c.mu.RLock()
	snap := c.snap.clone()
	loaded := c.loaded
	var tentative *status.Status
	if c.tentative != nil {
		t := *c.tentative
		tentative = &t
	}
	c.mu.RUnlock()

	return derive(c.identity, snap, loaded, tentative)
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Statuses:    append([]status.Record{}, s.Statuses...),
		Chapters:    make([]chapter.Chapter, len(s.Chapters)),
		Stream:      make([]stream.Entry, len(s.Stream)),
		Media:       append([]media.Entry{}, s.Media...),
		RefreshedAt: s.RefreshedAt,
	}
	for i, ch := range s.Chapters {
		out.Chapters[i] = ch.Clone()
	}
	for i, e := range s.Stream {
		if e.Preview != nil {
			p := *e.Preview
			e.Preview = &p
		}
		out.Stream[i] = e
	}
	return out
}
