package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	b, err := NewRedisBroker("redis://"+s.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, s
}

func TestNewRedisBroker_BadURL(t *testing.T) {
	_, err := NewRedisBroker("not a url", nil)
	require.Error(t, err)
}

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	b, _ := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, b.Ping(ctx))

	got := make(chan Event, 1)
	sub, err := b.Subscribe(ctx, Chapter, func(ev Event) {
		select {
		case got <- ev:
		default:
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, b.Publish(ctx, Event{Collection: Chapter, Op: OpDelete, ID: "c9", At: time.Now()}))

	select {
	case ev := <-got:
		require.Equal(t, Chapter, ev.Collection)
		require.Equal(t, OpDelete, ev.Op)
		require.Equal(t, "c9", ev.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestRedisBroker_TwoClientsShareChannel(t *testing.T) {
	first, s := setupTestRedis(t)
	second, err := NewRedisBroker("redis://"+s.Addr(), nil)
	require.NoError(t, err)
	defer second.Close()
	ctx := context.Background()

	got := make(chan Event, 1)
	sub, err := second.Subscribe(ctx, Status, func(ev Event) {
		select {
		case got <- ev:
		default:
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, first.Publish(ctx, Event{Collection: Status, Op: OpUpdate}))
	select {
	case ev := <-got:
		require.Equal(t, Status, ev.Collection)
	case <-time.After(2 * time.Second):
		t.Fatal("event not seen by second client")
	}
}

func TestRedisBroker_MalformedPayloadStillNotifies(t *testing.T) {
	b, s := setupTestRedis(t)
	ctx := context.Background()

	got := make(chan Event, 1)
	sub, err := b.Subscribe(ctx, Media, func(ev Event) {
		select {
		case got <- ev:
		default:
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	s.Publish(channelFor(Media), "{not json")
	select {
	case ev := <-got:
		require.Equal(t, Media, ev.Collection)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestRedisBroker_Unsubscribe(t *testing.T) {
	b, _ := setupTestRedis(t)
	ctx := context.Background()

	calls := make(chan struct{}, 8)
	sub, err := b.Subscribe(ctx, Stream, func(Event) { calls <- struct{}{} })
	require.NoError(t, err)
	sub.Unsubscribe()
	sub.Unsubscribe()

	require.NoError(t, b.Publish(ctx, Event{Collection: Stream}))
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, calls)
}
