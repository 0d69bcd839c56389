package model

// Product is a menu entry in the products table.
// Price is in currency minor units; a negative price represents a discount line.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	ImageURI    *string `json:"imageUri,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
}
