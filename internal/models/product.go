package models

import "time"

// Product is a catalog entry
type Product struct {
	ID        uint64
	Name      string
	Price     float64
	Category  string
	Img       string
	CreatedAt time.Time
}
