package readmodel

import (
	"testing"
	"time"

	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/stretchr/testify/require"
)

var partner = party.Identity{Role: party.RolePartner, MyID: "p-2", PartnerID: "p-1"}

func TestCache_EmptyView(t *testing.T) {
	c := NewCache(partner)
	v := c.View()

	require.False(t, v.Loaded)
	require.Equal(t, status.StatusSteady, v.MyStatus.Status)
	require.Equal(t, status.StatusSteady, v.PartnerStatus.Status)
	require.NotNil(t, v.Chapters)
	require.NotNil(t, v.Active)
	require.NotNil(t, v.Stream)
	require.NotNil(t, v.Media)
	require.Empty(t, v.Chapters)
}

func TestCache_DerivesStatusesByIdentity(t *testing.T) {
	c := NewCache(partner)
	c.Replace(Snapshot{Statuses: []status.Record{
		{PartyID: "p-1", CurrentStatus: status.StatusSync},
		{PartyID: "p-2", CurrentStatus: status.StatusAlone},
	}})

	v := c.View()
	require.True(t, v.Loaded)
	require.Equal(t, status.StatusAlone, v.MyStatus.Status)
	require.Equal(t, status.StatusSync, v.PartnerStatus.Status)
}

func TestCache_TentativeUntilReplace(t *testing.T) {
	c := NewCache(partner)
	c.Replace(Snapshot{Statuses: []status.Record{{PartyID: "p-2", CurrentStatus: status.StatusSteady}}})

	c.SetTentative(status.StatusSync)
	v := c.View()
	require.Equal(t, status.Value{Status: status.StatusSync, Tentative: true}, v.MyStatus)

	// server truth wins, even if the write never landed
	c.Replace(Snapshot{Statuses: []status.Record{{PartyID: "p-2", CurrentStatus: status.StatusSteady}}})
	require.Equal(t, status.Value{Status: status.StatusSteady}, c.View().MyStatus)
}

func TestCache_SplitsChaptersAndSortsMedia(t *testing.T) {
	c := NewCache(partner)
	c.Replace(Snapshot{
		Chapters: []chapter.Chapter{{ID: "a"}, {ID: "b", IsFinished: true}, {ID: "c"}},
		Media: []media.Entry{
			{ID: "m1", Status: media.StatusWatched},
			{ID: "m2", Status: media.StatusWatchlist},
		},
	})

	v := c.View()
	require.Len(t, v.Chapters, 3)
	require.Equal(t, []string{"a", "c"}, []string{v.Active[0].ID, v.Active[1].ID})
	require.Equal(t, "b", v.Finished[0].ID)
	require.Equal(t, "m2", v.Media[0].ID)
}

func TestCache_ReadersGetCopies(t *testing.T) {
	c := NewCache(partner)
	c.Replace(Snapshot{
		Chapters: []chapter.Chapter{{ID: "a", Milestones: []chapter.Milestone{{ID: 1, Text: "x"}}}},
		Stream:   []stream.Entry{{ID: "s1", Preview: &stream.Preview{URL: "https://a.io", Title: "A"}}},
	})

	v := c.View()
	v.Chapters[0].Milestones[0].Text = "mutated"
	v.Stream[0].Preview.Title = "mutated"

	again := c.View()
	require.Equal(t, "x", again.Chapters[0].Milestones[0].Text)
	require.Equal(t, "A", again.Stream[0].Preview.Title)

	ch, ok := c.Chapter("a")
	require.True(t, ok)
	ch.Milestones[0].Done = true
	ch2, _ := c.Chapter("a")
	require.False(t, ch2.Milestones[0].Done)
}

func TestCache_ReplaceIsWhole(t *testing.T) {
	c := NewCache(partner)
	c.Replace(Snapshot{Chapters: []chapter.Chapter{{ID: "a"}}, Stream: []stream.Entry{{ID: "s1"}}, RefreshedAt: time.Now()})
	c.Replace(Snapshot{Chapters: []chapter.Chapter{{ID: "b"}}})

	snap := c.Snapshot()
	require.Len(t, snap.Chapters, 1)
	require.Equal(t, "b", snap.Chapters[0].ID)
	require.Empty(t, snap.Stream)
}
