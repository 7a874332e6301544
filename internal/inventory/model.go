package inventory

import "time"

// TransactionType enumerates stock movements.
type TransactionType string

const (
	// TypeImport is inbound stock.
	TypeImport TransactionType = "IMPORT"
	// TypeExport is outbound stock.
	TypeExport TransactionType = "EXPORT"
)

// Transaction is one append-only stock movement record. Transactions are
// never mutated or deleted.
type Transaction struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Type        TransactionType `json:"type"`
	Quantity    int             `json:"quantity"`
	Note        string          `json:"note,omitempty"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	RefOrderID  string          `json:"ref_order_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Key implements store.Record.
func (t Transaction) Key() string { return t.ID }

// Timestamp implements syncer.Timestamped.
func (t Transaction) Timestamp() time.Time { return t.CreatedAt }
