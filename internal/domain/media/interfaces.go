package media

import "context"

// Repository provides persistence for media entries.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	Create(ctx context.Context, entry *Entry) error
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
}

// Searcher finds candidate titles in an external catalogue.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}
