package domain

import "time"

// Store is the single store profile shown on receipts and the dashboard.
type Store struct {
	ID        string
	Name      string
	TaxID     string
	Address   string
	Phone     string
	Email     string
	LogoRef   *string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
