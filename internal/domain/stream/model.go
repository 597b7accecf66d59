package stream

import (
	"net/url"
	"time"
)

// EntryType classifies a feed entry. Spellings are part of the stored format.
type EntryType string

const (
	TypeThought EntryType = "thought"
	TypeLink    EntryType = "link"
	TypeSystem  EntryType = "SYSTEM"
)

// Preview is link metadata attached to a link entry.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Valid reports whether the preview points at an absolute http(s) URL.
func (p *Preview) Valid() bool {
	if p == nil {
		return false
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Hostname returns the preview host, or "" when the URL does not parse.
func (p *Preview) Hostname() string {
	if !p.Valid() {
		return ""
	}
	u, _ := url.Parse(p.URL)
	return u.Hostname()
}

// Entry is one item of the shared feed. Content is ciphertext in the store
// and plaintext in the read model. Entries are never modified after creation.
type Entry struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"user_id"`
	Content   string    `json:"content"`
	Type      EntryType `json:"type"`
	Preview   *Preview  `json:"preview_data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
