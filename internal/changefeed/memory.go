package changefeed

import (
	"context"
	"sync"
)

// MemoryBroker fans events out to in-process subscribers. Each subscription has
// a one-slot buffer, so a burst of events while a handler is busy collapses
// into a single pending delivery.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[Collection]map[*memorySub]struct{}
	closed bool
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[Collection]map[*memorySub]struct{})}
}

type memorySub struct {
	broker *MemoryBroker
	c      Collection
	ch     chan Event
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// Publish delivers ev to every subscriber of ev.Collection without blocking.
func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for s := range b.subs[ev.Collection] {
		select {
		case s.ch <- ev:
		default:
			// a delivery is already pending; it triggers the same refresh
		}
	}
	return nil
}

// Subscribe registers h for c. The subscription ends on Unsubscribe, on ctx
// cancellation, or when the broker closes.
func (b *MemoryBroker) Subscribe(ctx context.Context, c Collection, h Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	s := &memorySub{
		broker: b,
		c:      c,
		ch:     make(chan Event, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	if b.subs[c] == nil {
		b.subs[c] = make(map[*memorySub]struct{})
	}
	b.subs[c][s] = struct{}{}

	go s.run(ctx, h)
	return s, nil
}

// Subscribers reports how many subscriptions are registered for c.
func (b *MemoryBroker) Subscribers(c Collection) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[c])
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var all []*memorySub
	for _, set := range b.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	b.mu.Unlock()

	for _, s := range all {
		s.Unsubscribe()
	}
	return nil
}

func (s *memorySub) run(ctx context.Context, h Handler) {
	defer close(s.exited)
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.detach()
			return
		case ev := <-s.ch:
			select {
			case <-s.done:
				return
			default:
			}
			h(ev)
		}
	}
}

func (s *memorySub) detach() {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	delete(s.broker.subs[s.c], s)
}

func (s *memorySub) Unsubscribe() {
	s.once.Do(func() {
		s.detach()
		close(s.done)
	})
	<-s.exited
}
