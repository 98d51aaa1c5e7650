package domain

import "time"

type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Price       float64
	Weight      float64
	WeightUnit  string
	Brand       string
	CategoryID  string
	OwnerID     string // user who manages the product
	Inventory   int
	ExpiryDate  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
