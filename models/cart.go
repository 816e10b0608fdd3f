package models

import "time"

// CartItem holds a product snapshot taken at add-time plus a quantity.
// At most one item per product id exists within a cart; repeated adds merge.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// Cart is the persisted cart document for one browsing session. Item order is
// insertion order and only matters for display.
type Cart struct {
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Count is the sum of all item quantities.
func (c *Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Total is the sum of snapshot price times quantity. A missing or zero
// snapshot price contributes nothing rather than failing.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		if item.Product.Price > 0 {
			total += item.Product.Price * float64(item.Quantity)
		}
	}
	return total
}
