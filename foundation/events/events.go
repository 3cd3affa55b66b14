// Package events allows for the registering and receiving of events. It is
// used to fan node activity out to websocket subscribers.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// messageBuffer is the number of messages held for a subscriber that is
// slow to receive. Messages beyond this are dropped for that subscriber.
const messageBuffer = 100

// Events maintains a mapping of subscriber id and channels so goroutines
// can register and receive events.
type Events struct {
	mu     sync.RWMutex
	m      map[string]chan string
	closed bool
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Subscribe registers a new subscriber and returns its id along with the
// channel its events are delivered on. After Shutdown the returned channel
// is already closed.
func (evt *Events) Subscribe() (string, <-chan string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan string, messageBuffer)

	if evt.closed {
		close(ch)
		return id, ch
	}

	evt.m[id] = ch
	return id, ch
}

// Unsubscribe closes and removes the channel for the subscriber. It reports
// whether the subscriber was known.
func (evt *Events) Unsubscribe(id string) bool {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return false
	}

	delete(evt.m, id)
	close(ch)
	return true
}

// Count returns the number of current subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals a message to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}

// Shutdown closes and removes every subscriber channel. Later subscriptions
// receive a closed channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
	evt.closed = true
}
