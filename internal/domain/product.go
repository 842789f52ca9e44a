package domain

import "time"

// DefaultCategory is assumed when the catalog record carries no type.
const DefaultCategory = "general"

// Product is a catalog record. JSON names follow the backend wire format.
type Product struct {
	ID       int64   `json:"producto_id"`
	Name     string  `json:"nombre"`
	Price    float64 `json:"precio"`
	Stock    int     `json:"stock"`
	Category string  `json:"tipo"`
}

// Normalize fills defaults the backend may omit.
func (p *Product) Normalize() {
	if p.Category == "" {
		p.Category = DefaultCategory
	}
}

// LineItem is a product snapshot plus quantity inside a cart. The product
// copy is frozen at add time; later catalog changes do not affect it.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// EffectiveQuantity clamps non-positive quantities to 1.
func (li LineItem) EffectiveQuantity() int {
	if li.Quantity <= 0 {
		return 1
	}
	return li.Quantity
}

// CartSnapshot is the read-only cart state handed to the order recorder
// and the events publisher at checkout time.
type CartSnapshot struct {
	Items      []LineItem `json:"items"`
	Subtotal   float64    `json:"subtotal"`
	Total      float64    `json:"total"`
	CapturedAt time.Time  `json:"captured_at"`
}
