package domain

import "github.com/nexstore/storefront/internal/money"

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is owned by the backend and read-only here.
type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	Price       money.Amount `json:"price"`
	Stock       int          `json:"stock"`
	CategoryID  string       `json:"category_id,omitempty"`
	Category    *Category    `json:"category,omitempty"`
}

// LineItem pairs a product reference with a quantity. Product is set when
// the backend inlined a snapshot of it.
type LineItem struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}
