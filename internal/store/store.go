// Package store persists each entity collection as a JSON array under a
// fixed Redis key, mirroring the layout the admin console keeps in browser
// storage. Every mutation persists the full collection, publishes a change
// event and enqueues a sync task for the remote collaborator.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/shared"
)

// Record is any entity that can live in a Collection.
type Record interface {
	Key() string
}

// Outbox enqueues durable sync tasks toward the remote collaborator.
type Outbox interface {
	EnqueuePush(ctx context.Context, entity string, record any) error
	EnqueueDelete(ctx context.Context, entity string, id string) error
}

// Collection is a cached entity collection keyed by record ID.
type Collection[T Record] struct {
	client *redis.Client
	key    string
	entity bus.Entity
	events *bus.Bus
	outbox Outbox
	logger *slog.Logger

	mu sync.Mutex
}

// NewCollection constructs a Collection bound to one Redis key.
func NewCollection[T Record](client *redis.Client, key string, entity bus.Entity, events *bus.Bus, outbox Outbox, logger *slog.Logger) *Collection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection[T]{
		client: client,
		key:    key,
		entity: entity,
		events: events,
		outbox: outbox,
		logger: logger,
	}
}

// Entity returns the entity name this collection stores.
func (c *Collection[T]) Entity() bus.Entity {
	return c.entity
}

// List reads the persisted collection. A missing key or corrupt payload reads
// as an empty collection.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		c.logger.Warn("corrupt collection payload, treating as empty",
			slog.String("key", c.key), slog.Any("error", err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get returns the record with the given ID.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if item.Key() == id {
			return item, nil
		}
	}
	return zero, fmt.Errorf("store: %s %q: %w", c.entity, id, shared.ErrNotFound)
}

// Add appends a record, persists and schedules a remote push.
func (c *Collection[T]) Add(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return err
	}
	for _, existing := range items {
		if existing.Key() == item.Key() {
			return fmt.Errorf("store: %s %q already exists: %w", c.entity, item.Key(), shared.ErrConflict)
		}
	}
	items = append(items, item)
	if err := c.persist(ctx, items); err != nil {
		return err
	}
	c.publish(bus.ActionAdded, item.Key())
	c.enqueuePush(ctx, item)
	return nil
}

// Update replaces the record with the same ID, persists and schedules a
// remote push.
func (c *Collection[T]) Update(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return err
	}
	found := false
	for i, existing := range items {
		if existing.Key() == item.Key() {
			items[i] = item
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("store: %s %q: %w", c.entity, item.Key(), shared.ErrNotFound)
	}
	if err := c.persist(ctx, items); err != nil {
		return err
	}
	c.publish(bus.ActionUpdated, item.Key())
	c.enqueuePush(ctx, item)
	return nil
}

// Remove deletes the record, persists and schedules a remote delete.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	found := false
	for _, existing := range items {
		if existing.Key() == id {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return fmt.Errorf("store: %s %q: %w", c.entity, id, shared.ErrNotFound)
	}
	if err := c.persist(ctx, kept); err != nil {
		return err
	}
	c.publish(bus.ActionRemoved, id)
	if c.outbox != nil {
		if err := c.outbox.EnqueueDelete(ctx, string(c.entity), id); err != nil {
			c.logger.Warn("enqueue remote delete", slog.String("entity", string(c.entity)),
				slog.String("id", id), slog.Any("error", err))
		}
	}
	return nil
}

// Replace overwrites the whole collection without touching the outbox. The
// reconciler uses it to land a merged or reloaded snapshot.
func (c *Collection[T]) Replace(ctx context.Context, items []T, action bus.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.persist(ctx, items); err != nil {
		return err
	}
	c.publish(action, "")
	return nil
}

// SyncedAt reports when the collection last reconciled with the remote
// collaborator. The zero time means never.
func (c *Collection[T]) SyncedAt(ctx context.Context) (time.Time, error) {
	raw, err := c.client.Get(ctx, c.key+":synced_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("store: read sync stamp %s: %w", c.key, err)
	}
	stamp, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, nil
	}
	return stamp, nil
}

// StampSynced records a successful reconcile.
func (c *Collection[T]) StampSynced(ctx context.Context, at time.Time) error {
	return c.client.Set(ctx, c.key+":synced_at", at.UTC().Format(time.RFC3339Nano), 0).Err()
}

func (c *Collection[T]) persist(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", c.key, err)
	}
	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("store: write %s: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T]) publish(action bus.Action, id string) {
	if c.events == nil {
		return
	}
	c.events.Publish(bus.Event{Entity: c.entity, Action: action, ID: id})
}

func (c *Collection[T]) enqueuePush(ctx context.Context, item T) {
	if c.outbox == nil {
		return
	}
	if err := c.outbox.EnqueuePush(ctx, string(c.entity), item); err != nil {
		c.logger.Warn("enqueue remote push", slog.String("entity", string(c.entity)),
			slog.String("id", item.Key()), slog.Any("error", err))
	}
}
