package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dongphonui/sigma-vie-shop/internal/shared"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

// Service coordinates product operations.
type Service struct {
	coll   *store.Collection[Product]
	locks  *shared.KeyedMutex
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds Service.
func NewService(coll *store.Collection[Product], locks *shared.KeyedMutex, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if locks == nil {
		locks = shared.NewKeyedMutex()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{coll: coll, locks: locks, audit: audit, logger: logger}
}

// List returns the cached product collection.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.coll.List(ctx)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.coll.Get(ctx, id)
}

// Create adds a product to the catalog.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	now := time.Now().UTC()
	p := Product{
		ID:        shared.NewID("P"),
		Name:      req.Name,
		Price:     req.Price,
		Stock:     req.Stock,
		Variants:  variantsFromInput(req.Variants),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(p.Variants) > 0 && p.Stock == 0 {
		for _, v := range p.Variants {
			p.Stock += v.Stock
		}
	}
	if err := s.coll.Add(ctx, p); err != nil {
		return Product{}, err
	}
	s.audit.Record(ctx, shared.AuditLog{
		Action: "catalog:create", Entity: "product", EntityID: p.ID,
		Meta: map[string]any{"name": p.Name, "price": p.Price, "stock": p.Stock},
	})
	return p, nil
}

// Update edits product fields through the generic update path.
func (s *Service) Update(ctx context.Context, id string, req UpdateProductRequest) (Product, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.coll.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Variants != nil {
		p.Variants = variantsFromInput(*req.Variants)
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.coll.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Delete removes a product locally and schedules the remote delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.coll.Remove(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, shared.AuditLog{Action: "catalog:delete", Entity: "product", EntityID: id})
	return nil
}

// AdjustStock applies a signed delta to the product's stock, scoped to the
// matching variant when selectors are given. The variant is created lazily
// with stock equal to the delta; the aggregate always shifts by the same
// delta. There is no floor check here; callers pre-validate availability.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int, size, color string) (Product, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.adjustLocked(ctx, id, delta, size, color)
}

// Reserve decrements effective stock by qty after verifying availability,
// all under the product lock. Order creation and inventory exports go
// through here.
func (s *Service) Reserve(ctx context.Context, id string, qty int, size, color string) (Product, error) {
	if qty <= 0 {
		return Product{}, fmt.Errorf("catalog: quantity must be positive: %w", shared.ErrValidation)
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.coll.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	available := EffectiveStock(p, size, color)
	if qty > available {
		return Product{}, fmt.Errorf("catalog: product %s: requested %d, available %d: %w", id, qty, available, ErrInsufficientStock)
	}
	return s.adjustLocked(ctx, id, -qty, size, color)
}

// Release returns qty units to stock, compensating a cancelled reservation.
func (s *Service) Release(ctx context.Context, id string, qty int, size, color string) (Product, error) {
	if qty <= 0 {
		return Product{}, fmt.Errorf("catalog: quantity must be positive: %w", shared.ErrValidation)
	}
	return s.AdjustStock(ctx, id, qty, size, color)
}

func (s *Service) adjustLocked(ctx context.Context, id string, delta int, size, color string) (Product, error) {
	p, err := s.coll.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if size != "" || color != "" {
		found := false
		for i, v := range p.Variants {
			if v.Matches(size, color) {
				p.Variants[i].Stock += delta
				found = true
				break
			}
		}
		if !found {
			p.Variants = append(p.Variants, Variant{Size: size, Color: color, Stock: delta})
		}
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()

	if err := s.coll.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func variantsFromInput(inputs []VariantInput) []Variant {
	if len(inputs) == 0 {
		return nil
	}
	variants := make([]Variant, 0, len(inputs))
	for _, in := range inputs {
		variants = append(variants, Variant{Size: in.Size, Color: in.Color, Stock: in.Stock})
	}
	return variants
}
