package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesMatchingSubscribers(t *testing.T) {
	b := New()

	productCh, cancelProducts := b.Subscribe(EntityProducts, 4)
	defer cancelProducts()
	allCh, cancelAll := b.Subscribe("", 4)
	defer cancelAll()
	orderCh, cancelOrders := b.Subscribe(EntityOrders, 4)
	defer cancelOrders()

	b.Publish(Event{Entity: EntityProducts, Action: ActionAdded, ID: "p1"})

	select {
	case evt := <-productCh:
		require.Equal(t, EntityProducts, evt.Entity)
		require.Equal(t, ActionAdded, evt.Action)
		require.Equal(t, "p1", evt.ID)
		require.False(t, evt.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("product subscriber did not receive event")
	}

	select {
	case evt := <-allCh:
		require.Equal(t, "p1", evt.ID)
	case <-time.After(time.Second):
		t.Fatal("wildcard subscriber did not receive event")
	}

	select {
	case <-orderCh:
		t.Fatal("order subscriber received product event")
	default:
	}
}

func TestPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	b := New()

	ch, cancel := b.Subscribe(EntityOrders, 1)
	defer cancel()

	b.Publish(Event{Entity: EntityOrders, Action: ActionAdded, ID: "o1"})
	b.Publish(Event{Entity: EntityOrders, Action: ActionUpdated, ID: "o2"})

	evt := <-ch
	require.Equal(t, "o1", evt.ID)
	select {
	case <-ch:
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := New()

	ch, cancel := b.Subscribe(EntityCustomers, 1)
	cancel()

	_, open := <-ch
	require.False(t, open)

	// Publishing after cancel must not panic.
	b.Publish(Event{Entity: EntityCustomers, Action: ActionRemoved, ID: "c1"})
}
