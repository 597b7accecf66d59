package media

import (
	"sort"
	"time"
)

// Status is the watchlist state of a media entry.
type Status string

const (
	StatusWatchlist Status = "WATCHLIST"
	StatusWatched   Status = "WATCHED"
)

// Toggle returns the other status.
func (s Status) Toggle() Status {
	if s == StatusWatched {
		return StatusWatchlist
	}
	return StatusWatched
}

// Entry is one row of shared_media.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ExternalID string    `json:"imdb_id"`
	Poster     string    `json:"poster,omitempty"`
	Status     Status    `json:"status"`
	Type       string    `json:"type"`
	AuthorID   string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Candidate is a lookup result that can be added to the watchlist.
type Candidate struct {
	Title      string `json:"title"`
	ExternalID string `json:"external_id"`
	Poster     string `json:"poster,omitempty"`
	Year       string `json:"year,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Patch is a partial media update.
type Patch struct {
	Status *Status
}

// SortForDisplay returns a copy with watched entries after unwatched ones,
// keeping the original order within each group.
func SortForDisplay(entries []Entry) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status != StatusWatched && out[j].Status == StatusWatched
	})
	return out
}
