package catalog

import (
	"errors"
	"time"
)

// Variant is a (size, color) stock sub-record under a product.
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

// Product is a catalog entry. Aggregate Stock should equal the sum of
// variant stocks when variants exist, but callers may drift it; only the
// adjustment path keeps both in step.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	Variants  []Variant `json:"variants,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key implements store.Record.
func (p Product) Key() string { return p.ID }

// Timestamp implements syncer.Timestamped.
func (p Product) Timestamp() time.Time { return p.CreatedAt }

// Matches reports whether the variant carries the given selectors.
func (v Variant) Matches(size, color string) bool {
	return v.Size == size && v.Color == color
}

// EffectiveStock resolves the stock a buyer can draw from: the matching
// variant when a selector is given, else the aggregate. A selector without a
// matching variant resolves to zero.
func EffectiveStock(p Product, size, color string) int {
	if size == "" && color == "" {
		return p.Stock
	}
	for _, v := range p.Variants {
		if v.Matches(size, color) {
			return v.Stock
		}
	}
	return 0
}

// ErrInsufficientStock rejects an order or export that exceeds availability.
var ErrInsufficientStock = errors.New("insufficient stock")
