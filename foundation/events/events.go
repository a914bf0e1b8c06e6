// Package events fans chain events out to websocket subscribers.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// bufferSize is how many events a subscriber may fall behind before new
// events are dropped for it.
const bufferSize = 100

// Events holds one buffered channel per subscriber id.
type Events struct {
	mu      sync.RWMutex
	subs    map[string]chan string
	sent    atomic.Uint64
	dropped atomic.Uint64
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Shutdown closes every subscriber channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
}

// Acquire returns the channel for the subscriber id, creating it on first
// use.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subs[id]; exists {
		return ch
	}

	ch := make(chan string, bufferSize)
	evt.subs[id] = ch

	return ch
}

// Release closes and removes the subscriber's channel.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)

	return nil
}

// Count returns the number of subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Send delivers the event to every subscriber with room in its buffer and
// never blocks. Deliveries to a full buffer are counted as dropped.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- s:
			evt.sent.Add(1)
		default:
			evt.dropped.Add(1)
		}
	}
}

// Sent returns the number of deliveries made.
func (evt *Events) Sent() uint64 {
	return evt.sent.Load()
}

// Dropped returns the number of deliveries skipped because a subscriber
// was too far behind.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}
