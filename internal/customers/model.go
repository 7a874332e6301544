package customers

import "time"

// Customer is one customer record in the local book.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Key implements store.Record.
func (c Customer) Key() string { return c.ID }

// Timestamp implements syncer.Timestamped.
func (c Customer) Timestamp() time.Time { return c.CreatedAt }

// Cohort buckets a customer by signup month, "2006-01".
func (c Customer) Cohort() string {
	return c.CreatedAt.Format("2006-01")
}
