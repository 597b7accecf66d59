// Package changefeed delivers "something changed" notifications per collection.
// Payloads are informational; subscribers always re-read the whole collection.
package changefeed

import (
	"context"
	"errors"
	"time"
)

// Collection names a watched collection. Values match the stored table names.
type Collection string

const (
	Status  Collection = "user_protocols"
	Chapter Collection = "chapters"
	Stream  Collection = "stream"
	Media   Collection = "shared_media"
)

// Collections lists every watched collection.
var Collections = []Collection{Status, Chapter, Stream, Media}

// Op is the kind of write that produced an event.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Event describes one committed write.
type Event struct {
	Collection Collection `json:"collection"`
	Op         Op         `json:"op"`
	ID         string     `json:"id,omitempty"`
	At         time.Time  `json:"at"`
}

// Handler receives events. It runs on a broker goroutine.
type Handler func(Event)

// ErrClosed is returned by brokers after Close.
var ErrClosed = errors.New("changefeed closed")

// Publisher announces committed writes.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscriber opens subscriptions to one collection.
type Subscriber interface {
	Subscribe(ctx context.Context, c Collection, h Handler) (Subscription, error)
}

// Broker is both ends of the feed.
type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// Subscription is a live registration. Unsubscribe is idempotent and returns
// once the handler goroutine has exited, so it must not be called from inside
// the handler.
type Subscription interface {
	Unsubscribe()
}
