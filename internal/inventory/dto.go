package inventory

// AdjustmentRequest records a manual stock import or export.
type AdjustmentRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=IMPORT EXPORT"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Note      string `json:"note,omitempty" validate:"max=500"`
	Size      string `json:"size,omitempty" validate:"max=40"`
	Color     string `json:"color,omitempty" validate:"max=40"`
}
