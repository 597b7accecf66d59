package mocks

import (
	"context"

	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/stretchr/testify/mock"
)

// StatusRepository is a mock for status.Repository.
type StatusRepository struct {
	mock.Mock
}

func (m *StatusRepository) List(ctx context.Context) ([]status.Record, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]status.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StatusRepository) Upsert(ctx context.Context, rec *status.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// ChapterRepository is a mock for chapter.Repository.
type ChapterRepository struct {
	mock.Mock
}

func (m *ChapterRepository) Create(ctx context.Context, ch *chapter.Chapter) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *ChapterRepository) Get(ctx context.Context, id string) (*chapter.Chapter, error) {
	args := m.Called(ctx, id)
	if ch, ok := args.Get(0).(*chapter.Chapter); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChapterRepository) List(ctx context.Context, opts chapter.ListOptions) ([]chapter.Chapter, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]chapter.Chapter); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChapterRepository) Update(ctx context.Context, id string, patch chapter.Patch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *ChapterRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ChapterRepository) UpdateRecorded(ctx context.Context, id string, patch chapter.Patch, entry *stream.Entry) error {
	args := m.Called(ctx, id, patch, entry)
	return args.Error(0)
}

func (m *ChapterRepository) DeleteRecorded(ctx context.Context, id string, entry *stream.Entry) error {
	args := m.Called(ctx, id, entry)
	return args.Error(0)
}

// StreamRepository is a mock for stream.Repository.
type StreamRepository struct {
	mock.Mock
}

func (m *StreamRepository) List(ctx context.Context, opts stream.ListOptions) ([]stream.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]stream.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StreamRepository) Create(ctx context.Context, entry *stream.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *StreamRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MediaRepository is a mock for media.Repository.
type MediaRepository struct {
	mock.Mock
}

func (m *MediaRepository) List(ctx context.Context) ([]media.Entry, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]media.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MediaRepository) Get(ctx context.Context, id string) (*media.Entry, error) {
	args := m.Called(ctx, id)
	if entry, ok := args.Get(0).(*media.Entry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MediaRepository) Create(ctx context.Context, entry *media.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MediaRepository) Update(ctx context.Context, id string, patch media.Patch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MediaRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SystemFeed is a mock for chapter.SystemFeed.
type SystemFeed struct {
	mock.Mock
}

func (m *SystemFeed) Compose(authorID, summary string) (*stream.Entry, error) {
	args := m.Called(authorID, summary)
	if entry, ok := args.Get(0).(*stream.Entry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

// LinkPreviewer is a mock for stream.LinkPreviewer.
type LinkPreviewer struct {
	mock.Mock
}

func (m *LinkPreviewer) Preview(ctx context.Context, rawURL string) (*stream.Preview, error) {
	args := m.Called(ctx, rawURL)
	if p, ok := args.Get(0).(*stream.Preview); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// MediaSearcher is a mock for media.Searcher.
type MediaSearcher struct {
	mock.Mock
}

func (m *MediaSearcher) Search(ctx context.Context, query string) ([]media.Candidate, error) {
	args := m.Called(ctx, query)
	if list, ok := args.Get(0).([]media.Candidate); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
