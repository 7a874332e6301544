package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	coll := store.NewCollection[Product](client, "shop:products", bus.EntityProducts, bus.New(), nil, nil)
	return NewService(coll, nil, nil, nil)
}

func TestAdjustStockAggregateOnly(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "Ao thun", Price: 150000, Stock: 10})
	require.NoError(t, err)

	updated, err := svc.AdjustStock(ctx, p.ID, 5, "", "")
	require.NoError(t, err)
	require.Equal(t, 15, updated.Stock)
	require.Empty(t, updated.Variants)

	updated, err = svc.AdjustStock(ctx, p.ID, -7, "", "")
	require.NoError(t, err)
	require.Equal(t, 8, updated.Stock)
}

func TestAdjustStockShiftsVariantAndAggregate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{
		Name:  "Ao khoac",
		Price: 320000,
		Variants: []VariantInput{
			{Size: "M", Color: "den", Stock: 4},
			{Size: "L", Color: "den", Stock: 6},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 10, p.Stock)

	updated, err := svc.AdjustStock(ctx, p.ID, 3, "M", "den")
	require.NoError(t, err)
	require.Equal(t, 13, updated.Stock)
	require.Equal(t, 7, EffectiveStock(updated, "M", "den"))
	require.Equal(t, 6, EffectiveStock(updated, "L", "den"))
}

func TestAdjustStockCreatesVariantLazily(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "Quan jean", Price: 250000, Stock: 0})
	require.NoError(t, err)

	updated, err := svc.AdjustStock(ctx, p.ID, 9, "32", "xanh")
	require.NoError(t, err)
	require.Len(t, updated.Variants, 1)
	require.Equal(t, Variant{Size: "32", Color: "xanh", Stock: 9}, updated.Variants[0])
	require.Equal(t, 9, updated.Stock)
}

func TestAdjustStockHasNoFloor(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "Non", Price: 50000, Stock: 2})
	require.NoError(t, err)

	updated, err := svc.AdjustStock(ctx, p.ID, -5, "", "")
	require.NoError(t, err)
	require.Equal(t, -3, updated.Stock)
}

func TestReserveChecksAvailability(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "Giay", Price: 500000, Stock: 3})
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, p.ID, 4, "", "")
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Failed reservation mutates nothing.
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.Stock)

	updated, err := svc.Reserve(ctx, p.ID, 3, "", "")
	require.NoError(t, err)
	require.Equal(t, 0, updated.Stock)
}

func TestReserveVariantWithoutMatchIsRejected(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{
		Name:     "Vay",
		Price:    280000,
		Variants: []VariantInput{{Size: "S", Color: "trang", Stock: 5}},
	})
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, p.ID, 1, "S", "den")
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestReleaseRestoresStock(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{
		Name:     "Ao so mi",
		Price:    200000,
		Variants: []VariantInput{{Size: "M", Color: "trang", Stock: 10}},
	})
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, p.ID, 4, "M", "trang")
	require.NoError(t, err)

	updated, err := svc.Release(ctx, p.ID, 4, "M", "trang")
	require.NoError(t, err)
	require.Equal(t, 10, updated.Stock)
	require.Equal(t, 10, EffectiveStock(updated, "M", "trang"))
}
