package media_test

import (
	"context"
	"testing"

	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/repository"
	"github.com/rpggio/syncus/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMediaService_Search_ShortQuery(t *testing.T) {
	searcher := &mocks.MediaSearcher{}
	svc := media.NewService(&mocks.MediaRepository{}, searcher, nil)

	got, err := svc.Search(context.Background(), "ab")
	require.NoError(t, err)
	require.Empty(t, got)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestMediaService_Search_DedupesAndCaps(t *testing.T) {
	ctx := context.Background()
	searcher := &mocks.MediaSearcher{}
	searcher.On("Search", ctx, "alien").Return([]media.Candidate{
		{Title: "Alien", ExternalID: "tt1"},
		{Title: "Alien", ExternalID: "tt1"},
		{Title: "Aliens", ExternalID: "tt2"},
		{Title: "Alien 3", ExternalID: "tt3"},
		{Title: "Alien Resurrection", ExternalID: "tt4"},
		{Title: "Alien: Covenant", ExternalID: "tt5"},
		{Title: "Alien: Romulus", ExternalID: "tt6"},
	}, nil)

	svc := media.NewService(&mocks.MediaRepository{}, searcher, nil)
	got, err := svc.Search(ctx, " alien ")
	require.NoError(t, err)
	require.Len(t, got, 5)
	require.Equal(t, "tt2", got[1].ExternalID)
}

func TestMediaService_Search_Unavailable(t *testing.T) {
	svc := media.NewService(&mocks.MediaRepository{}, nil, nil)
	_, err := svc.Search(context.Background(), "alien")
	require.ErrorIs(t, err, media.ErrSearchUnavailable)
}

func TestMediaService_Add_Defaults(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MediaRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := media.NewService(repo, nil, nil)
	entry, err := svc.Add(ctx, "p-1", media.Candidate{Title: "Alien", ExternalID: "tt1", Poster: "N/A"})
	require.NoError(t, err)
	require.Empty(t, entry.Poster)
	require.Equal(t, "movie", entry.Type)
	require.Equal(t, media.StatusWatchlist, entry.Status)
	require.Equal(t, "p-1", entry.AuthorID)
}

func TestMediaService_Toggle(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MediaRepository{}
	repo.On("Get", ctx, "m1").Return(&media.Entry{ID: "m1", Status: media.StatusWatchlist}, nil)
	repo.On("Update", ctx, "m1", mock.MatchedBy(func(p media.Patch) bool {
		return p.Status != nil && *p.Status == media.StatusWatched
	})).Return(nil)

	svc := media.NewService(repo, nil, nil)
	next, err := svc.Toggle(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, media.StatusWatched, next)
}

func TestMediaService_Toggle_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MediaRepository{}
	repo.On("Get", ctx, "m1").Return(nil, repository.ErrNotFound)

	svc := media.NewService(repo, nil, nil)
	_, err := svc.Toggle(ctx, "m1")
	require.ErrorIs(t, err, media.ErrEntryNotFound)
}

func TestSortForDisplay(t *testing.T) {
	in := []media.Entry{
		{ID: "a", Status: media.StatusWatched},
		{ID: "b", Status: media.StatusWatchlist},
		{ID: "c", Status: media.StatusWatched},
		{ID: "d", Status: media.StatusWatchlist},
	}
	out := media.SortForDisplay(in)
	ids := make([]string, len(out))
	for i, e := range out {
		ids[i] = e.ID
	}
	require.Equal(t, []string{"b", "d", "a", "c"}, ids)
	require.Equal(t, "a", in[0].ID)
}
