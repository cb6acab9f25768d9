package domain

import "time"

// Product is an inventory item.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Quantity    int
	Category    string
	Supplier    string
	ImageRef    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
