package models

import "time"

// Product mirrors the provider-owned `products` table. Rows are read-only
// from this service's point of view; the snapshot stored in cart items is a
// copy taken at add-time so the cart can render without a fresh fetch.
type Product struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Description   *string   `json:"description"`
	Price         float64   `json:"price" gorm:"not null"`
	ImageURL      *string   `json:"image_url"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
