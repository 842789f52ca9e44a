package domain

// Order is the sale header posted to the order-recording backend.
type Order struct {
	Total  float64 `json:"monto_total"`
	NIT    string  `json:"nit"`
	UserID int64   `json:"usuario_id"`
}

// OrderLine is one recorded line item, joined to its header by OrderID.
type OrderLine struct {
	OrderID   int64   `json:"venta_id"`
	ProductID int64   `json:"producto_id"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precio_unitario"`
}
