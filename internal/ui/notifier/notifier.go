// Package notifier fans out change events to open live update streams.
package notifier

import (
	"sync"
	"time"
)

// Kind says what changed.
type Kind string

// Event kinds.
const (
	CatalogReloaded Kind = "catalog"
	PagesChanged    Kind = "pages"
)

// Event is delivered to subscribers. Events coalesce: a subscriber that has
// not drained its previous event only sees the newest one.
type Event struct {
	Kind Kind
	At   time.Time
}

// Notifier broadcasts events to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
	now       func() time.Time
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
		now:       time.Now,
	}
}

// Subscribe returns a channel that receives events. The caller must call
// Unsubscribe when done.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast sends an event of the given kind to every listener without
// blocking. A pending event is replaced by the new one.
func (n *Notifier) Broadcast(kind Kind) {
	ev := Event{Kind: kind, At: n.now()}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.listeners {
		select {
		case ch <- ev:
			continue
		default:
		}
		// full: drop the stale event and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
