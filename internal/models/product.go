package models

// Product is a sellable catalog entry.
type Product struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price"`
	IsActive  bool    `json:"isActive"`
}
