package chapter

import (
	"context"

	"github.com/rpggio/syncus/internal/domain/stream"
)

// Repository provides persistence for chapters.
type Repository interface {
	Create(ctx context.Context, ch *Chapter) error
	Get(ctx context.Context, id string) (*Chapter, error)
	List(ctx context.Context, opts ListOptions) ([]Chapter, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
	// UpdateRecorded and DeleteRecorded commit the chapter change and the
	// stream entry together or not at all.
	UpdateRecorded(ctx context.Context, id string, patch Patch, entry *stream.Entry) error
	DeleteRecorded(ctx context.Context, id string, entry *stream.Entry) error
}

// SystemFeed seals governance entries for the shared stream.
type SystemFeed interface {
	Compose(authorID, summary string) (*stream.Entry, error)
}
