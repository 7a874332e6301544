package orders

import (
	"errors"
	"time"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusCancelled Status = "CANCELLED"
)

// CanTransition reports whether the status change is allowed. SHIPPED and
// CANCELLED are terminal; nothing leaves them, so a second cancellation is
// rejected at this layer rather than by the UI.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusShipped || to == StatusCancelled
	default:
		return false
	}
}

// ErrInvalidTransition rejects a disallowed status change.
var ErrInvalidTransition = errors.New("invalid status transition")

// PaymentMethod enumerates supported payments.
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// CustomerSnapshot denormalizes the buyer at order time.
type CustomerSnapshot struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ShippingSnapshot is the delivery target, which may differ from the buyer.
type ShippingSnapshot struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ProductSnapshot denormalizes the ordered product.
type ProductSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Order is one sales order.
type Order struct {
	ID          string           `json:"id"`
	Customer    CustomerSnapshot `json:"customer"`
	Shipping    ShippingSnapshot `json:"shipping"`
	Product     ProductSnapshot  `json:"product"`
	Quantity    int              `json:"quantity"`
	UnitPrice   int64            `json:"unit_price"`
	ShippingFee int64            `json:"shipping_fee"`
	Total       int64            `json:"total"`
	Payment     PaymentMethod    `json:"payment"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Key implements store.Record.
func (o Order) Key() string { return o.ID }

// Timestamp implements syncer.Timestamped.
func (o Order) Timestamp() time.Time { return o.CreatedAt }
