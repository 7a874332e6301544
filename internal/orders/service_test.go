package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/inventory"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

type fixture struct {
	orders    *Service
	catalog   *catalog.Service
	inventory *inventory.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	events := bus.New()

	productColl := store.NewCollection[catalog.Product](client, "shop:products", bus.EntityProducts, events, nil, nil)
	catalogSvc := catalog.NewService(productColl, nil, nil, nil)

	txColl := store.NewCollection[inventory.Transaction](client, "shop:inventory", bus.EntityInventory, events, nil, nil)
	ledger := inventory.NewService(txColl, catalogSvc, nil)

	orderColl := store.NewCollection[Order](client, "shop:orders", bus.EntityOrders, events, nil, nil)
	svc := NewService(orderColl, catalogSvc, ledger, nil, nil, ServiceConfig{DefaultShippingFee: 30000}, nil)
	return fixture{orders: svc, catalog: catalogSvc, inventory: ledger}
}

func createRequest(productID string, qty int) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:    "Nguyen Van A",
		CustomerPhone:   "0900000001",
		CustomerAddress: "12 Le Loi, Q1, TP.HCM",
		ProductID:       productID,
		Quantity:        qty,
		Payment:         "COD",
	}
}

func TestCreateDecrementsStockAndRecordsExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Ao so mi", Price: 250000, Stock: 10})
	require.NoError(t, err)

	order, err := f.orders.Create(ctx, createRequest(p.ID, 3))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(order.ID, "SO-"))
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, int64(250000*3+30000), order.Total)
	require.Equal(t, "Nguyen Van A", order.Shipping.Name, "shipping falls back to customer")

	got, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 7, got.Stock)

	ledger, err := f.inventory.List(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	require.Equal(t, inventory.TypeExport, ledger[0].Type)
	require.Equal(t, 3, ledger[0].Quantity)
	require.Equal(t, order.ID, ledger[0].RefOrderID)
}

func TestCreateInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Quan jean", Price: 400000, Stock: 2})
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, createRequest(p.ID, 5))
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)

	got, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Stock)

	orders, err := f.orders.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)

	ledger, err := f.inventory.List(ctx)
	require.NoError(t, err)
	require.Empty(t, ledger)
}

func TestCancelRestoresStockWithImportMovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Ao so mi", Price: 250000, Stock: 10})
	require.NoError(t, err)

	order, err := f.orders.Create(ctx, createRequest(p.ID, 3))
	require.NoError(t, err)

	cancelled, err := f.orders.UpdateStatus(ctx, order.ID, StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	got, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 10, got.Stock)

	ledger, err := f.inventory.List(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)

	var imports []inventory.Transaction
	for _, tx := range ledger {
		if tx.Type == inventory.TypeImport {
			imports = append(imports, tx)
		}
	}
	require.Len(t, imports, 1)
	require.Equal(t, 3, imports[0].Quantity)
	require.Equal(t, order.ID, imports[0].RefOrderID)
}

func TestSecondCancellationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Vay", Price: 350000, Stock: 4})
	require.NoError(t, err)

	order, err := f.orders.Create(ctx, createRequest(p.ID, 2))
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusCancelled)
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Stock must not be restored twice.
	got, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.Stock)
}

func TestLifecycleTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Non", Price: 90000, Stock: 6})
	require.NoError(t, err)

	order, err := f.orders.Create(ctx, createRequest(p.ID, 1))
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusShipped)
	require.ErrorIs(t, err, ErrInvalidTransition, "PENDING cannot skip to SHIPPED")

	confirmed, err := f.orders.UpdateStatus(ctx, order.ID, StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, confirmed.Status)

	shipped, err := f.orders.UpdateStatus(ctx, order.ID, StatusShipped)
	require.NoError(t, err)
	require.Equal(t, StatusShipped, shipped.Status)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition, "SHIPPED is terminal")
}

func TestCancelConfirmedOrderRestocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Tui xach", Price: 700000, Stock: 3})
	require.NoError(t, err)

	order, err := f.orders.Create(ctx, createRequest(p.ID, 2))
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusConfirmed)
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, StatusCancelled)
	require.NoError(t, err)

	got, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.Stock)
}

func TestInvoiceRendersTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Ao thun", Price: 120000, Stock: 5})
	require.NoError(t, err)

	order, err := f.orders.Create(ctx, createRequest(p.ID, 2))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, RenderInvoice(&sb, order))
	html := sb.String()
	require.Contains(t, html, order.ID)
	require.Contains(t, html, "Ao thun")
	require.Contains(t, html, FormatVND(order.Total))
}
