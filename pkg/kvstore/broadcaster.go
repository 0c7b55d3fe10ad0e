package kvstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Broadcaster fans change events out to in-process subscribers. It stands in
// for the browser's storage-event delivery when all "tabs" live in one
// process (sqlite and memory drivers).
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]subscriber
	next int
}

type subscriber struct {
	ch     chan Event
	origin uuid.UUID
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[int]subscriber{}}
}

// Subscribe registers a feed that skips events originating from origin.
// The channel closes when ctx is cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, origin uuid.UUID) <-chan Event {
	ch := make(chan Event, watchBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = subscriber{ch: ch, origin: origin}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
		}
		b.mu.Unlock()
	}()

	return ch
}

// Publish delivers the event to every subscriber except the writer. Slow
// subscribers lose events rather than block the writer.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.origin == ev.Origin {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
