package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/inventory"
	"github.com/dongphonui/sigma-vie-shop/internal/shared"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// DefaultShippingFee applies when the request does not carry a fee.
	DefaultShippingFee int64
}

// Service coordinates order operations.
type Service struct {
	coll        *store.Collection[Order]
	catalog     *catalog.Service
	ledger      *inventory.Service
	idempotency *shared.IdempotencyStore
	audit       *shared.AuditLogger
	cfg         ServiceConfig
	logger      *slog.Logger
}

// NewService builds Service.
func NewService(coll *store.Collection[Order], catalogSvc *catalog.Service, ledger *inventory.Service, idem *shared.IdempotencyStore, audit *shared.AuditLogger, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{coll: coll, catalog: catalogSvc, ledger: ledger, idempotency: idem, audit: audit, cfg: cfg, logger: logger}
}

// List returns the cached order collection.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.coll.List(ctx)
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.coll.Get(ctx, id)
}

// Create validates availability against a fresh product snapshot, reserves
// stock, persists the order and appends the EXPORT movement. The reservation
// runs under the product lock, so concurrent orders on the same product
// cannot both pass the availability check.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (Order, error) {
	product, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		return Order{}, fmt.Errorf("verify product: %w", err)
	}

	if _, err := s.catalog.Reserve(ctx, req.ProductID, req.Quantity, req.Size, req.Color); err != nil {
		return Order{}, err
	}

	fee := s.cfg.DefaultShippingFee
	if req.ShippingFee != nil {
		fee = *req.ShippingFee
	}

	shipping := ShippingSnapshot{Name: req.ShippingName, Phone: req.ShippingPhone, Address: req.ShippingAddress}
	if shipping.Name == "" && shipping.Phone == "" && shipping.Address == "" {
		shipping = ShippingSnapshot{Name: req.CustomerName, Phone: req.CustomerPhone, Address: req.CustomerAddress}
	}

	order := Order{
		ID: shared.NewID("SO"),
		Customer: CustomerSnapshot{
			ID:      req.CustomerID,
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddress,
		},
		Shipping: shipping,
		Product: ProductSnapshot{
			ID:    product.ID,
			Name:  product.Name,
			Size:  req.Size,
			Color: req.Color,
		},
		Quantity:    req.Quantity,
		UnitPrice:   product.Price,
		ShippingFee: fee,
		Total:       product.Price*int64(req.Quantity) + fee,
		Payment:     PaymentMethod(req.Payment),
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.coll.Add(ctx, order); err != nil {
		// Return the reserved units before surfacing the failure.
		if _, relErr := s.catalog.Release(ctx, req.ProductID, req.Quantity, req.Size, req.Color); relErr != nil {
			s.logger.Error("release after failed order persist",
				slog.String("product_id", req.ProductID), slog.Any("error", relErr))
		}
		return Order{}, err
	}

	if _, err := s.ledger.Record(ctx, inventory.Transaction{
		ProductID:   product.ID,
		ProductName: product.Name,
		Type:        inventory.TypeExport,
		Quantity:    req.Quantity,
		Size:        req.Size,
		Color:       req.Color,
		RefOrderID:  order.ID,
		Note:        "order created",
	}); err != nil {
		s.logger.Warn("record export movement", slog.String("order_id", order.ID), slog.Any("error", err))
	}

	s.audit.Record(ctx, shared.AuditLog{
		Action: "orders:create", Entity: "order", EntityID: order.ID,
		Meta: map[string]any{"product_id": product.ID, "quantity": req.Quantity, "total": order.Total},
	})
	return order, nil
}

// UpdateStatus moves an order through the lifecycle. Only the transition to
// CANCELLED carries a side effect: the reserved stock is restored and one
// compensating IMPORT movement is appended. The restore is guarded both by
// the transition table and by an idempotency key, so a racing duplicate
// cannot double-restore.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (Order, error) {
	order, err := s.coll.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(order.Status, next) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	if next == StatusCancelled {
		if err := s.restoreStock(ctx, order); err != nil {
			return Order{}, err
		}
	}

	order.Status = next
	if err := s.coll.Update(ctx, order); err != nil {
		return Order{}, err
	}

	s.audit.Record(ctx, shared.AuditLog{
		Action: "orders:status", Entity: "order", EntityID: order.ID,
		Meta: map[string]any{"status": string(next)},
	})
	return order, nil
}

func (s *Service) restoreStock(ctx context.Context, order Order) error {
	key := "order:cancel:" + order.ID
	if err := s.idempotency.CheckAndInsert(ctx, key, "orders"); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			return fmt.Errorf("order %s already cancelled: %w", order.ID, shared.ErrConflict)
		}
		return err
	}

	if _, err := s.catalog.Release(ctx, order.Product.ID, order.Quantity, order.Product.Size, order.Product.Color); err != nil {
		_ = s.idempotency.Delete(ctx, key)
		return fmt.Errorf("restore stock: %w", err)
	}

	if _, err := s.ledger.Record(ctx, inventory.Transaction{
		ProductID:   order.Product.ID,
		ProductName: order.Product.Name,
		Type:        inventory.TypeImport,
		Quantity:    order.Quantity,
		Size:        order.Product.Size,
		Color:       order.Product.Color,
		RefOrderID:  order.ID,
		Note:        "order cancelled",
	}); err != nil {
		s.logger.Warn("record import movement", slog.String("order_id", order.ID), slog.Any("error", err))
	}
	return nil
}
