package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/remote"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

type doc struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (d doc) Key() string          { return d.ID }
func (d doc) Timestamp() time.Time { return d.CreatedAt }

type countingOutbox struct {
	pushes map[string]int
}

func (o *countingOutbox) EnqueuePush(_ context.Context, _ string, record any) error {
	if o.pushes == nil {
		o.pushes = make(map[string]int)
	}
	o.pushes[record.(doc).ID]++
	return nil
}

func (o *countingOutbox) EnqueueDelete(context.Context, string, string) error { return nil }

type fixture struct {
	coll     *store.Collection[doc]
	outbox   *countingOutbox
	requests *atomic.Int64
}

func newFixture(t *testing.T, remoteDocs []doc, opts Options) (*Reconciler[doc], *fixture) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	requests := &atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(remoteDocs)
	}))
	t.Cleanup(srv.Close)

	outbox := &countingOutbox{}
	coll := store.NewCollection[doc](client, "shop:docs", bus.EntityOrders, bus.New(), outbox, nil)
	remoteClient := remote.NewClient(remote.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
	rec := New[doc](coll, remoteClient, outbox, opts, nil)
	return rec, &fixture{coll: coll, outbox: outbox, requests: requests}
}

func at(day int) time.Time {
	return time.Date(2026, 4, day, 12, 0, 0, 0, time.UTC)
}

func TestReconcileMergesLocalOnlyRecords(t *testing.T) {
	ctx := context.Background()
	a := doc{ID: "A", CreatedAt: at(3)}
	b := doc{ID: "B", CreatedAt: at(2)}
	c := doc{ID: "C", CreatedAt: at(1)}

	rec, fx := newFixture(t, []doc{a, b}, Options{})
	require.NoError(t, fx.coll.Replace(ctx, []doc{b, c}, bus.ActionReloaded))

	require.NoError(t, rec.Reconcile(ctx))

	local, err := fx.coll.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []doc{a, b, c}, local)
	require.Equal(t, 1, fx.outbox.pushes["C"])
	require.Zero(t, fx.outbox.pushes["B"])

	stamp, err := fx.coll.SyncedAt(ctx)
	require.NoError(t, err)
	require.False(t, stamp.IsZero())
}

func TestReconcileIdempotent(t *testing.T) {
	ctx := context.Background()
	a := doc{ID: "A", CreatedAt: at(3)}
	b := doc{ID: "B", CreatedAt: at(2)}
	c := doc{ID: "C", CreatedAt: at(1)}

	rec, fx := newFixture(t, []doc{a, b}, Options{})
	require.NoError(t, fx.coll.Replace(ctx, []doc{b, c}, bus.ActionReloaded))

	require.NoError(t, rec.Reconcile(ctx))
	first, err := fx.coll.List(ctx)
	require.NoError(t, err)

	require.NoError(t, rec.Reconcile(ctx))
	second, err := fx.coll.List(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, second, 3)
}

func TestReconcileEmptyRemoteGuard(t *testing.T) {
	ctx := context.Background()
	local := []doc{{ID: "X", CreatedAt: at(1)}}

	rec, fx := newFixture(t, []doc{}, Options{GuardEmptyRemote: true})
	require.NoError(t, fx.coll.Replace(ctx, local, bus.ActionReloaded))

	require.NoError(t, rec.Reconcile(ctx))

	got, err := fx.coll.List(ctx)
	require.NoError(t, err)
	require.Equal(t, local, got)

	stamp, err := fx.coll.SyncedAt(ctx)
	require.NoError(t, err)
	require.True(t, stamp.IsZero(), "guarded run must not stamp freshness")
}

func TestReconcileWithoutGuardAcceptsEmptyRemote(t *testing.T) {
	ctx := context.Background()
	c := doc{ID: "C", CreatedAt: at(1)}

	rec, fx := newFixture(t, []doc{}, Options{})
	require.NoError(t, fx.coll.Replace(ctx, []doc{c}, bus.ActionReloaded))

	require.NoError(t, rec.Reconcile(ctx))

	got, err := fx.coll.List(ctx)
	require.NoError(t, err)
	// Local-only record survives the merge and is pushed out.
	require.Equal(t, []doc{c}, got)
	require.Equal(t, 1, fx.outbox.pushes["C"])
}

func TestReconcileKeepsLocalOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	coll := store.NewCollection[doc](client, "shop:docs", bus.EntityOrders, bus.New(), nil, nil)
	local := []doc{{ID: "X", CreatedAt: at(1)}}
	require.NoError(t, coll.Replace(ctx, local, bus.ActionReloaded))

	rec := New[doc](coll, remote.NewClient(remote.Config{BaseURL: srv.URL, Timeout: time.Second}, nil), nil, Options{}, nil)
	require.NoError(t, rec.Reconcile(ctx))

	got, err := coll.List(ctx)
	require.NoError(t, err)
	require.Equal(t, local, got)
}

func TestForceReloadReplacesLocal(t *testing.T) {
	ctx := context.Background()
	a := doc{ID: "A", CreatedAt: at(3)}

	rec, fx := newFixture(t, []doc{a}, Options{GuardEmptyRemote: true})
	require.NoError(t, fx.coll.Replace(ctx, []doc{{ID: "stale", CreatedAt: at(1)}}, bus.ActionReloaded))

	require.NoError(t, rec.ForceReload(ctx))

	got, err := fx.coll.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []doc{a}, got)
}

func TestMaybeReconcileSkipsWhenFresh(t *testing.T) {
	ctx := context.Background()
	rec, fx := newFixture(t, []doc{}, Options{FreshFor: time.Hour})

	require.NoError(t, fx.coll.StampSynced(ctx, time.Now()))
	require.NoError(t, rec.MaybeReconcile(ctx))
	require.Zero(t, fx.requests.Load())

	require.NoError(t, fx.coll.StampSynced(ctx, time.Now().Add(-2*time.Hour)))
	require.NoError(t, rec.MaybeReconcile(ctx))
	require.Equal(t, int64(1), fx.requests.Load())
}
