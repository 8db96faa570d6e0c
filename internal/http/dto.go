package http

import (
	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/money"
	"github.com/nexstore/storefront/internal/pricing"
)

// Amounts go out twice: as a two-place decimal string for arithmetic and
// as display text.

type CartItemDTO struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	ImageURL      string `json:"image_url,omitempty"`
	Quantity      int    `json:"quantity"`
	Stock         int    `json:"stock"`
	Price         string `json:"price"`
	PriceText     string `json:"price_text"`
	LineTotal     string `json:"line_total"`
	LineTotalText string `json:"line_total_text"`
}

type SummaryDTO struct {
	Subtotal        string `json:"subtotal"`
	SubtotalText    string `json:"subtotal_text"`
	GrandTotal      string `json:"grand_total"`
	GrandTotalText  string `json:"grand_total_text"`
	TotalItemsCount int    `json:"total_items_count"`
}

// CartResponseDTO carries the backend's Summary, which is authoritative,
// next to a Preview computed here from the items' own prices.
type CartResponseDTO struct {
	ID      int64              `json:"id,omitempty"`
	Items   []CartItemDTO      `json:"items"`
	Summary SummaryDTO         `json:"summary"`
	Preview PreviewResponseDTO `json:"preview"`
}

type OrderItemDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	PriceText   string `json:"price_text"`
}

type OrderResponseDTO struct {
	ID              int64          `json:"id"`
	Status          string         `json:"status"`
	ShippingAddress string         `json:"shipping_address"`
	TotalPrice      string         `json:"total_price"`
	TotalText       string         `json:"total_text"`
	Items           []OrderItemDTO `json:"items"`
	CreatedAt       string         `json:"created_at"`
}

type PreviewLineDTO struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	Subtotal     string `json:"subtotal"`
	SubtotalText string `json:"subtotal_text"`
}

type PreviewResponseDTO struct {
	Lines      []PreviewLineDTO `json:"lines"`
	Subtotal   string           `json:"subtotal"`
	Total      string           `json:"total"`
	ItemsCount int              `json:"items_count"`
	Unresolved []string         `json:"unresolved,omitempty"`
}

type UserDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
}

func convertCart(c *domain.Cart) CartResponseDTO {
	if c == nil {
		c = domain.EmptyCart()
	}
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemDTO{
			ProductID:     item.ProductID,
			Name:          item.Name,
			ImageURL:      item.ImageURL,
			Quantity:      item.Quantity,
			Stock:         item.Stock,
			Price:         item.Price.Fixed(),
			PriceText:     item.Price.Format(),
			LineTotal:     item.LineTotal.Fixed(),
			LineTotalText: item.LineTotal.Format(),
		})
	}
	return CartResponseDTO{
		ID:    c.ID,
		Items: items,
		Summary: SummaryDTO{
			Subtotal:        c.Summary.Subtotal.Fixed(),
			SubtotalText:    c.Summary.Subtotal.Format(),
			GrandTotal:      c.Summary.GrandTotal.Fixed(),
			GrandTotalText:  c.Summary.GrandTotal.Format(),
			TotalItemsCount: c.Summary.TotalItemsCount,
		},
		Preview: convertTotals(pricing.CartPreview(c)),
	}
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		dto := OrderItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.Fixed(),
			PriceText: item.Price.Format(),
		}
		if item.Product != nil {
			dto.ProductName = item.Product.Name
		}
		items = append(items, dto)
	}
	return OrderResponseDTO{
		ID:              o.ID,
		Status:          o.Status.String(),
		ShippingAddress: o.ShippingAddress,
		TotalPrice:      o.TotalPrice.Fixed(),
		TotalText:       pricing.OrderTotalText(o),
		Items:           items,
		CreatedAt:       o.CreatedAt,
	}
}

func convertTotals(t pricing.Totals) PreviewResponseDTO {
	lines := make([]PreviewLineDTO, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, PreviewLineDTO{
			ProductID:    l.ProductID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice.StringFixed(2),
			Subtotal:     l.Subtotal.StringFixed(2),
			SubtotalText: money.FormatCurrency(l.Subtotal),
		})
	}
	return PreviewResponseDTO{
		Lines:      lines,
		Subtotal:   t.Subtotal(),
		Total:      t.Text,
		ItemsCount: t.ItemsCount,
		Unresolved: t.Unresolved,
	}
}

func convertUser(u *domain.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsSuperuser: u.IsSuperuser,
	}
}
