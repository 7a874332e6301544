package orders

// CreateOrderRequest creates a sales order. The console sends denormalized
// customer and shipping details; shipping falls back to the customer fields
// when left empty.
type CreateOrderRequest struct {
	CustomerID      string `json:"customer_id,omitempty"`
	CustomerName    string `json:"customer_name" validate:"required,max=200"`
	CustomerPhone   string `json:"customer_phone" validate:"required,max=30"`
	CustomerAddress string `json:"customer_address" validate:"required,max=500"`

	ShippingName    string `json:"shipping_name,omitempty" validate:"max=200"`
	ShippingPhone   string `json:"shipping_phone,omitempty" validate:"max=30"`
	ShippingAddress string `json:"shipping_address,omitempty" validate:"max=500"`

	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size,omitempty" validate:"max=40"`
	Color     string `json:"color,omitempty" validate:"max=40"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`

	Payment     string `json:"payment" validate:"required,oneof=COD BANK_TRANSFER"`
	ShippingFee *int64 `json:"shipping_fee,omitempty" validate:"omitempty,gte=0"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED SHIPPED CANCELLED"`
}
