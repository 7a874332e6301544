package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/shared"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

// Service maintains the append-only transaction ledger and applies manual
// stock adjustments.
type Service struct {
	coll    *store.Collection[Transaction]
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(coll *store.Collection[Transaction], catalogSvc *catalog.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{coll: coll, catalog: catalogSvc, logger: logger}
}

// List returns the transaction ledger.
func (s *Service) List(ctx context.Context) ([]Transaction, error) {
	return s.coll.List(ctx)
}

// Record appends one transaction. ID and timestamp are assigned when absent
// so order side-effects can hand in partially built records.
func (s *Service) Record(ctx context.Context, tx Transaction) (Transaction, error) {
	if tx.ID == "" {
		tx.ID = shared.NewID("TX")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if err := s.coll.Add(ctx, tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Adjust applies a manual import or export: the stock moves first, then the
// movement is recorded. Exports are availability-checked.
func (s *Service) Adjust(ctx context.Context, req AdjustmentRequest) (Transaction, error) {
	var (
		product catalog.Product
		err     error
	)
	switch TransactionType(req.Type) {
	case TypeImport:
		product, err = s.catalog.AdjustStock(ctx, req.ProductID, req.Quantity, req.Size, req.Color)
	case TypeExport:
		product, err = s.catalog.Reserve(ctx, req.ProductID, req.Quantity, req.Size, req.Color)
	default:
		return Transaction{}, shared.ErrValidation
	}
	if err != nil {
		return Transaction{}, err
	}

	return s.Record(ctx, Transaction{
		ProductID:   product.ID,
		ProductName: product.Name,
		Type:        TransactionType(req.Type),
		Quantity:    req.Quantity,
		Note:        req.Note,
		Size:        req.Size,
		Color:       req.Color,
	})
}
