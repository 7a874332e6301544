// Package bus carries typed change notifications between the storage layer
// and any in-process consumers (report cache invalidation, tests, future UI
// push channels). Delivery is synchronous with respect to Publish ordering
// but never blocks the publisher: a subscriber with a full buffer misses the
// event.
package bus

import (
	"sync"
	"time"
)

// Entity identifies one of the cached collections.
type Entity string

const (
	EntityProducts  Entity = "products"
	EntityOrders    Entity = "orders"
	EntityInventory Entity = "inventory"
	EntityCustomers Entity = "customers"
)

// Action describes what happened to the collection.
type Action string

const (
	ActionAdded    Action = "added"
	ActionUpdated  Action = "updated"
	ActionRemoved  Action = "removed"
	ActionMerged   Action = "merged"
	ActionReloaded Action = "reloaded"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Entity Entity
	Action Action
	ID     string
	At     time.Time
}

type subscription struct {
	entity Entity // empty matches every entity
	ch     chan Event
}

// Bus fans change events out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]*subscription)}
}

// Subscribe registers a listener for one entity, or all entities when entity
// is empty. The returned cancel function must be called to release the
// subscription; the channel is closed by cancel.
func (b *Bus) Subscribe(entity Entity, buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscription{entity: entity, ch: make(chan Event, buffer)}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers the event to matching subscribers without blocking.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.entity != "" && sub.entity != evt.Entity {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}
