package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "syncus:changes:"

// RedisBroker carries events over Redis pub/sub so separate processes see
// each other's writes.
type RedisBroker struct {
	client *redis.Client
	logger *slog.Logger
	owned  bool
}

// NewRedisBroker connects to redisURL and verifies the connection.
func NewRedisBroker(redisURL string, logger *slog.Logger) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	b := NewRedisBrokerWithClient(client, logger)
	b.owned = true
	return b, nil
}

// NewRedisBrokerWithClient wraps an existing client. Close leaves it open.
func NewRedisBrokerWithClient(client *redis.Client, logger *slog.Logger) *RedisBroker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedisBroker{client: client, logger: logger}
}

func channelFor(c Collection) string {
	return channelPrefix + string(c)
}

// Publish sends ev on the collection's channel.
func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channelFor(ev.Collection), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe listens on the collection's channel. It returns after Redis has
// confirmed the subscription, so events published afterwards are delivered.
func (b *RedisBroker) Subscribe(ctx context.Context, c Collection, h Handler) (Subscription, error) {
	ps := b.client.Subscribe(ctx, channelFor(c))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", c, err)
	}

	s := &redisSub{
		ps:      ps,
		pending: make(chan Event, 1),
		done:    make(chan struct{}),
	}
	s.wg.Add(2)
	go s.receive(ctx, c, b.logger)
	go s.deliver(ctx, h)
	return s, nil
}

// Ping checks the connection.
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the client if the broker created it.
func (b *RedisBroker) Close() error {
	if !b.owned {
		return nil
	}
	return b.client.Close()
}

type redisSub struct {
	ps      *redis.PubSub
	pending chan Event
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func (s *redisSub) receive(ctx context.Context, c Collection, logger *slog.Logger) {
	defer s.wg.Done()
	msgs := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("malformed change event", "channel", msg.Channel, "error", err)
				ev = Event{Collection: c, At: time.Now()}
			}
			select {
			case s.pending <- ev:
			default:
			}
		}
	}
}

func (s *redisSub) deliver(ctx context.Context, h Handler) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case ev := <-s.pending:
			h(ev)
		}
	}
}

func (s *redisSub) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.ps.Close()
	})
	s.wg.Wait()
}
