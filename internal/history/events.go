package history

import (
	"sync"

	"github.com/clipd/clipd/internal/clip"
)

// EventType tags a change notification.
type EventType string

const (
	EventInserted EventType = "inserted"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
)

// Event is one change to the history, published so a UI can refresh its
// view without polling the store.
type Event struct {
	Type EventType
	Item *clip.Item
}

// subscriberBuffer is the per-subscriber channel capacity. A consumer that
// falls further behind than this drops events rather than blocking the
// capture loop; it can always re-list the store to resync.
const subscriberBuffer = 64

// broadcaster fans change events out to subscribers.
type broadcaster struct {
	mu   sync.Mutex
	subs []chan Event
}

// Subscribe registers a new listener. The channel is closed when the
// manager shuts down.
func (b *broadcaster) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	b.subs = append(b.subs, ch)
	return ch
}

// publish delivers an event to every subscriber without blocking.
func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// close shuts down all subscriber channels.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
