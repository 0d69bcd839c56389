package model

// Order statuses. CANCELLED is part of the taxonomy but no endpoint
// currently transitions an order into it.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Order represents an entry in the orders table.
// DisplayID is the human-facing ticket number, sequential per register
// session; ID is the permanent database identity.
type Order struct {
	ID          int64   `json:"id"`
	Timestamp   int64   `json:"timestamp"` // epoch millis
	TotalAmount int64   `json:"totalAmount"`
	Status      string  `json:"status"`
	RandomID    *string `json:"randomId,omitempty"`
	DisplayID   int     `json:"displayId"`
	IsTakeout   bool    `json:"isTakeout"`
}

// OrderItem is a row in the order_items table. ProductName and PriceAtSale
// are snapshots taken at sale time so later product edits or deletions never
// rewrite history.
type OrderItem struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	PriceAtSale int64  `json:"priceAtSale"`
}

// OrderWithItems is what the kitchen endpoints expose.
type OrderWithItems struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
