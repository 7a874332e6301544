package catalog

// VariantInput describes one variant in a create or update request.
type VariantInput struct {
	Size  string `json:"size" validate:"max=40"`
	Color string `json:"color" validate:"max=40"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// CreateProductRequest creates a new product.
type CreateProductRequest struct {
	Name     string         `json:"name" validate:"required,max=200"`
	Price    int64          `json:"price" validate:"required,gt=0"`
	Stock    int            `json:"stock" validate:"gte=0"`
	Variants []VariantInput `json:"variants,omitempty" validate:"omitempty,dive"`
}

// UpdateProductRequest edits product fields. Nil fields keep current values.
type UpdateProductRequest struct {
	Name     *string         `json:"name,omitempty" validate:"omitempty,max=200"`
	Price    *int64          `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock    *int            `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Variants *[]VariantInput `json:"variants,omitempty" validate:"omitempty,dive"`
}

// AdjustStockRequest applies a signed delta to one product, optionally
// scoped to a variant.
type AdjustStockRequest struct {
	Delta int    `json:"delta" validate:"required"`
	Size  string `json:"size,omitempty" validate:"max=40"`
	Color string `json:"color,omitempty" validate:"max=40"`
}
