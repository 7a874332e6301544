package reports

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/customers"
	"github.com/dongphonui/sigma-vie-shop/internal/orders"
)

// Dashboard is the aggregate view the console home screen renders.
type Dashboard struct {
	Revenue       int64                   `json:"revenue"`
	OrderCount    int                     `json:"order_count"`
	StatusCounts  map[string]int          `json:"status_counts"`
	TopProducts   []ProductSales          `json:"top_products"`
	SignupCohorts []customers.CohortCount `json:"signup_cohorts"`
}

// ProductSales ranks one product by units sold.
type ProductSales struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int    `json:"units"`
	Revenue   int64  `json:"revenue"`
}

const topProductLimit = 5

// Service assembles cached reports from the order and customer collections.
type Service struct {
	orders    *orders.Service
	customers *customers.Service
	cache     *Cache
	logger    *slog.Logger

	group singleflight.Group
}

// NewService builds Service.
func NewService(orderSvc *orders.Service, customerSvc *customers.Service, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: orderSvc, customers: customerSvc, cache: cache, logger: logger}
}

// Dashboard returns the aggregate view, served from cache when fresh. A burst
// of requests after an invalidation collapses into one rebuild.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	key, err := s.cache.BuildKey(ctx, "shop", "reports", "dashboard")
	if err != nil {
		return Dashboard{}, err
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		var d Dashboard
		err := s.cache.FetchJSON(ctx, key, &d, func(ctx context.Context) (any, error) {
			return s.buildDashboard(ctx)
		})
		return d, err
	})
	if err != nil {
		return Dashboard{}, err
	}
	return result.(Dashboard), nil
}

func (s *Service) buildDashboard(ctx context.Context) (Dashboard, error) {
	orderList, err := s.orders.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	cohorts, err := s.customers.CohortCounts(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		OrderCount:    len(orderList),
		StatusCounts:  make(map[string]int),
		SignupCohorts: cohorts,
	}
	sales := make(map[string]*ProductSales)
	for _, o := range orderList {
		d.StatusCounts[string(o.Status)]++
		if o.Status == orders.StatusCancelled {
			continue
		}
		d.Revenue += o.Total
		entry, ok := sales[o.Product.ID]
		if !ok {
			entry = &ProductSales{ProductID: o.Product.ID, Name: o.Product.Name}
			sales[o.Product.ID] = entry
		}
		entry.Units += o.Quantity
		entry.Revenue += o.UnitPrice * int64(o.Quantity)
	}

	ranked := make([]ProductSales, 0, len(sales))
	for _, entry := range sales {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Units != ranked[j].Units {
			return ranked[i].Units > ranked[j].Units
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	d.TopProducts = ranked
	return d, nil
}

// WatchInvalidation bumps the cache version whenever the order or customer
// collection changes. It blocks until ctx is cancelled, so run it on its own
// goroutine.
func (s *Service) WatchInvalidation(ctx context.Context, events *bus.Bus) {
	ch, cancel := events.Subscribe("", 16)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if evt.Entity != bus.EntityOrders && evt.Entity != bus.EntityCustomers {
				continue
			}
			if err := s.cache.Bump(ctx); err != nil {
				s.logger.Warn("bump report cache", slog.Any("error", err))
			}
		}
	}
}
