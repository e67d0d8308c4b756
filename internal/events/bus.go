// Package events provides a simple publish-subscribe bus carrying
// component status snapshots to SSE delivery.
package events

import (
	"sync"

	"github.com/hostkit/statedemo/internal/models"
)

const subBufferSize = 8

// Bus is a non-blocking publish-subscribe bus. Subscribers that are slow
// to consume snapshots have them dropped rather than blocking publishers;
// every snapshot is a full view, so a dropped one is superseded by the
// next anyway.
type Bus struct {
	mu   sync.Mutex
	subs map[string]chan models.StatusSnapshot
}

// NewBus creates a new bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan models.StatusSnapshot),
	}
}

// Subscribe creates a new subscription with the given ID. The returned
// channel receives status snapshots. Call Unsubscribe when done.
func (b *Bus) Subscribe(id string) <-chan models.StatusSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan models.StatusSnapshot, subBufferSize)
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish sends a snapshot to all subscribers. If a subscriber's channel
// is full the snapshot is dropped for that subscriber (non-blocking).
func (b *Bus) Publish(snap models.StatusSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
			// Drop if subscriber is slow
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
