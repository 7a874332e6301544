package customers

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/dongphonui/sigma-vie-shop/internal/shared"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

// Service manages the customer book.
type Service struct {
	coll   *store.Collection[Customer]
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds Service.
func NewService(coll *store.Collection[Customer], audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{coll: coll, audit: audit, logger: logger}
}

// List returns the cached customer collection.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.coll.List(ctx)
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.coll.Get(ctx, id)
}

// Create registers a customer.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	c := Customer{
		ID:        shared.NewID("C"),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.coll.Add(ctx, c); err != nil {
		return Customer{}, err
	}
	s.audit.Record(ctx, shared.AuditLog{
		Action: "customers:create", Entity: "customer", EntityID: c.ID,
		Meta: map[string]any{"name": c.Name},
	})
	return c, nil
}

// Update edits customer fields.
func (s *Service) Update(ctx context.Context, id string, req UpdateCustomerRequest) (Customer, error) {
	c, err := s.coll.Get(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.Note != nil {
		c.Note = *req.Note
	}
	if err := s.coll.Update(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// Delete removes a customer locally and schedules the remote delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.coll.Remove(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, shared.AuditLog{Action: "customers:delete", Entity: "customer", EntityID: id})
	return nil
}

// CohortCounts groups customers by signup month, newest month first.
func (s *Service) CohortCounts(ctx context.Context) ([]CohortCount, error) {
	list, err := s.coll.List(ctx)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]int)
	for _, c := range list {
		byMonth[c.Cohort()]++
	}
	counts := make([]CohortCount, 0, len(byMonth))
	for month, n := range byMonth {
		counts = append(counts, CohortCount{Month: month, Customers: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Month > counts[j].Month })
	return counts, nil
}

// CohortCount is one signup-month bucket.
type CohortCount struct {
	Month     string `json:"month"`
	Customers int    `json:"customers"`
}
