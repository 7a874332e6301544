// Package syncer reconciles the local entity collections with the remote
// collaborator. Local-only records are presumed unsynced writes and pushed
// out through the outbox; remote records win on conflict.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/remote"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

// Timestamped is a record that knows when it was created, used to keep
// merged snapshots sorted newest first.
type Timestamped interface {
	store.Record
	Timestamp() time.Time
}

// EntityReconciler is the non-generic surface jobs and HTTP handlers use.
type EntityReconciler interface {
	Entity() string
	Reconcile(ctx context.Context) error
	MaybeReconcile(ctx context.Context) error
	ForceReload(ctx context.Context) error
	SyncedAt(ctx context.Context) (time.Time, error)
}

// Options tune reconciler behaviour per entity.
type Options struct {
	// GuardEmptyRemote skips the merge when the remote collection is empty
	// but local records exist, so a server reset cannot wipe local orders.
	GuardEmptyRemote bool
	// FreshFor is how long a reconciled snapshot counts as fresh.
	FreshFor time.Duration
}

// Reconciler merges one entity collection with the remote collaborator.
type Reconciler[T Timestamped] struct {
	coll   *store.Collection[T]
	client *remote.Client
	outbox store.Outbox
	opts   Options
	logger *slog.Logger
}

// New constructs a Reconciler for one collection.
func New[T Timestamped](coll *store.Collection[T], client *remote.Client, outbox store.Outbox, opts Options, logger *slog.Logger) *Reconciler[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FreshFor <= 0 {
		opts.FreshFor = 5 * time.Minute
	}
	return &Reconciler[T]{coll: coll, client: client, outbox: outbox, opts: opts, logger: logger}
}

// Entity names the entity this reconciler owns.
func (r *Reconciler[T]) Entity() string {
	return string(r.coll.Entity())
}

// SyncedAt reports the freshness stamp of the collection.
func (r *Reconciler[T]) SyncedAt(ctx context.Context) (time.Time, error) {
	return r.coll.SyncedAt(ctx)
}

// MaybeReconcile runs the merge only when the snapshot is stale.
func (r *Reconciler[T]) MaybeReconcile(ctx context.Context) error {
	stamp, err := r.coll.SyncedAt(ctx)
	if err != nil {
		return err
	}
	if !stamp.IsZero() && time.Since(stamp) < r.opts.FreshFor {
		return nil
	}
	return r.Reconcile(ctx)
}

// Reconcile fetches the remote collection, pushes local-only records and
// persists the union sorted newest first. Running it twice against an
// unchanged remote yields the same snapshot.
func (r *Reconciler[T]) Reconcile(ctx context.Context) error {
	entity := r.Entity()

	remoteItems, err := remote.FetchAll[T](ctx, r.client, entity)
	if err != nil {
		// No remote data this round; the local snapshot stays authoritative.
		r.logger.Warn("remote fetch failed, keeping local snapshot",
			slog.String("entity", entity), slog.Any("error", err))
		return nil
	}

	local, err := r.coll.List(ctx)
	if err != nil {
		return fmt.Errorf("syncer: list local %s: %w", entity, err)
	}

	if r.opts.GuardEmptyRemote && len(remoteItems) == 0 && len(local) > 0 {
		r.logger.Warn("remote collection empty, skipping merge to protect local records",
			slog.String("entity", entity), slog.Int("local", len(local)))
		return nil
	}

	remoteIDs := make(map[string]struct{}, len(remoteItems))
	for _, item := range remoteItems {
		remoteIDs[item.Key()] = struct{}{}
	}

	merged := make([]T, 0, len(remoteItems)+len(local))
	merged = append(merged, remoteItems...)
	var pushed int
	for _, item := range local {
		if _, ok := remoteIDs[item.Key()]; ok {
			continue
		}
		if r.outbox != nil {
			if err := r.outbox.EnqueuePush(ctx, entity, item); err != nil {
				r.logger.Warn("enqueue unsynced record",
					slog.String("entity", entity), slog.String("id", item.Key()), slog.Any("error", err))
			} else {
				pushed++
			}
		}
		merged = append(merged, item)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp().After(merged[j].Timestamp())
	})

	if err := r.coll.Replace(ctx, merged, bus.ActionMerged); err != nil {
		return fmt.Errorf("syncer: persist merged %s: %w", entity, err)
	}
	if err := r.coll.StampSynced(ctx, time.Now()); err != nil {
		return fmt.Errorf("syncer: stamp %s: %w", entity, err)
	}

	r.logger.Info("reconciled collection",
		slog.String("entity", entity),
		slog.Int("remote", len(remoteItems)),
		slog.Int("local_only", pushed),
		slog.Int("total", len(merged)))
	return nil
}

// ForceReload discards the local snapshot and replaces it with the remote
// collection, bypassing the empty-remote guard and the union step. Used when
// switching identity or session context.
func (r *Reconciler[T]) ForceReload(ctx context.Context) error {
	entity := r.Entity()

	remoteItems, err := remote.FetchAll[T](ctx, r.client, entity)
	if err != nil {
		return fmt.Errorf("syncer: force reload %s: %w", entity, err)
	}

	sort.SliceStable(remoteItems, func(i, j int) bool {
		return remoteItems[i].Timestamp().After(remoteItems[j].Timestamp())
	})

	if err := r.coll.Replace(ctx, remoteItems, bus.ActionReloaded); err != nil {
		return fmt.Errorf("syncer: persist reloaded %s: %w", entity, err)
	}
	if err := r.coll.StampSynced(ctx, time.Now()); err != nil {
		return fmt.Errorf("syncer: stamp %s: %w", entity, err)
	}
	return nil
}
