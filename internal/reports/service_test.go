package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/customers"
	"github.com/dongphonui/sigma-vie-shop/internal/inventory"
	"github.com/dongphonui/sigma-vie-shop/internal/orders"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

type fixture struct {
	reports   *Service
	orders    *orders.Service
	catalog   *catalog.Service
	customers *customers.Service
	cache     *Cache
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

	orderColl := store.NewCollection[orders.Order](client, "shop:orders", bus.EntityOrders, events, nil, nil)
	orderSvc := orders.NewService(orderColl, catalogSvc, ledger, nil, nil, orders.ServiceConfig{}, nil)

	customerColl := store.NewCollection[customers.Customer](client, "shop:customers", bus.EntityCustomers, events, nil, nil)
	customerSvc := customers.NewService(customerColl, nil, nil)

	cache := NewCache(client, time.Minute)
	return fixture{
		reports:   NewService(orderSvc, customerSvc, cache, nil),
		orders:    orderSvc,
		catalog:   catalogSvc,
		customers: customerSvc,
		cache:     cache,
	}
}

func placeOrder(t *testing.T, f fixture, productID string, qty int) orders.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), orders.CreateOrderRequest{
		CustomerName:    "Le Van C",
		CustomerPhone:   "0933444555",
		CustomerAddress: "45 Nguyen Hue",
		ProductID:       productID,
		Quantity:        qty,
		Payment:         "COD",
	})
	require.NoError(t, err)
	return o
}

func TestDashboardAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Ao thun", Price: 100000, Stock: 20})
	require.NoError(t, err)
	p2, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Quan short", Price: 200000, Stock: 20})
	require.NoError(t, err)

	placeOrder(t, f, p1.ID, 3)
	placeOrder(t, f, p2.ID, 1)
	cancelled := placeOrder(t, f, p2.ID, 5)
	_, err = f.orders.UpdateStatus(ctx, cancelled.ID, orders.StatusCancelled)
	require.NoError(t, err)

	_, err = f.customers.Create(ctx, customers.CreateCustomerRequest{Name: "Le Van C", Phone: "0933444555"})
	require.NoError(t, err)

	d, err := f.reports.Dashboard(ctx)
	require.NoError(t, err)

	require.Equal(t, 3, d.OrderCount)
	require.Equal(t, int64(100000*3+200000*1), d.Revenue, "cancelled orders excluded")
	require.Equal(t, 2, d.StatusCounts["PENDING"])
	require.Equal(t, 1, d.StatusCounts["CANCELLED"])

	require.Len(t, d.TopProducts, 2)
	require.Equal(t, p1.ID, d.TopProducts[0].ProductID)
	require.Equal(t, 3, d.TopProducts[0].Units)

	require.Len(t, d.SignupCohorts, 1)
	require.Equal(t, 1, d.SignupCohorts[0].Customers)
}

func TestDashboardServedFromCacheUntilBump(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Ao thun", Price: 100000, Stock: 20})
	require.NoError(t, err)
	placeOrder(t, f, p.ID, 1)

	first, err := f.reports.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.OrderCount)

	placeOrder(t, f, p.ID, 1)

	stale, err := f.reports.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stale.OrderCount, "cached copy survives the write")

	require.NoError(t, f.cache.Bump(ctx))

	fresh, err := f.reports.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.OrderCount)
}

func TestWriteOrdersCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, catalog.CreateProductRequest{Name: "Ao thun", Price: 100000, Stock: 20})
	require.NoError(t, err)
	o := placeOrder(t, f, p.ID, 2)

	var sb strings.Builder
	require.NoError(t, f.reports.WriteOrdersCSV(ctx, &sb))
	out := sb.String()

	require.True(t, strings.HasPrefix(out, "# Report: Orders\r\n"))
	require.Contains(t, out, "Order ID,Created At,Status")
	require.Contains(t, out, o.ID)
	require.Contains(t, out, "Ao thun")
	require.Contains(t, out, "\r\n", "spreadsheet friendly line endings")
}
