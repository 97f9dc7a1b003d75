// Package events provides the in-process publish-subscribe bus the agent
// uses to push state changes (mode flips, bundle updates, session changes)
// to any number of connected UI listeners. Both the HTTP layer and the
// bundle sync manager hold a reference to the same Bus, which decouples
// "who notifies" from "how many listeners".
package events

import (
	"sync"
	"time"
)

// Event types published on the bus.
const (
	TypeModeChanged    = "mode-changed"
	TypeBundleSynced   = "bundle-synced"
	TypeSessionChanged = "session-changed"
)

// Event is one notification delivered to subscribers.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Bus fans events out to all current subscribers. A subscriber that has
// fallen behind its channel buffer misses events rather than blocking the
// publisher; UI listeners re-read full state on reconnect anyway.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new listener. The returned cancel function must be
// called when the listener goes away; it closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish delivers an event to every current subscriber without blocking.
func (b *Bus) Publish(eventType string, payload any) {
	event := Event{Type: eventType, Payload: payload, At: time.Now().UTC()}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default: // slow subscriber, drop
		}
	}
}

// Subscribers reports the current listener count. Used in tests and the
// health endpoint's debug logging.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
