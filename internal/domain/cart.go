package domain

import "github.com/nexstore/storefront/internal/money"

type Cart struct {
	ID        int64      `json:"id"`
	UserID    *string    `json:"user_id"`
	Items     []CartItem `json:"items"`
	Summary   Summary    `json:"summary"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

// CartItem is a line item enriched by the backend with the product fields
// current at read time.
type CartItem struct {
	ProductID   string       `json:"product_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	Quantity    int          `json:"quantity"`
	Price       money.Amount `json:"price"`
	Stock       int          `json:"stock"`
	LineTotal   money.Amount `json:"line_total"`
}

type Summary struct {
	Subtotal        money.Amount `json:"subtotal"`
	GrandTotal      money.Amount `json:"grand_total"`
	TotalItemsCount int          `json:"total_items_count"`
}

func (i CartItem) LineItem() LineItem {
	return LineItem{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		Product: &Product{
			ID:          i.ProductID,
			Name:        i.Name,
			Description: i.Description,
			ImageURL:    i.ImageURL,
			Price:       i.Price,
			Stock:       i.Stock,
		},
	}
}

func (c *Cart) LineItems() []LineItem {
	items := make([]LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, item.LineItem())
	}
	return items
}

// Normalize clamps summary values to non-negative numbers.
func (s *Summary) Normalize() {
	s.Subtotal = money.Amount{Decimal: money.NonNegative(s.Subtotal)}
	s.GrandTotal = money.Amount{Decimal: money.NonNegative(s.GrandTotal)}
	if s.TotalItemsCount < 0 {
		s.TotalItemsCount = 0
	}
}

func (c *Cart) Normalize() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	c.Summary.Normalize()
}

// EmptyCart is what callers see before the first add-to-cart.
func EmptyCart() *Cart {
	c := &Cart{}
	c.Normalize()
	return c
}
