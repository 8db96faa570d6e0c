// Package pricing computes line subtotals and order/cart totals for preview.
// Everything here is pure so it can run on every form change.
package pricing

import (
	"sort"

	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/money"
	"github.com/shopspring/decimal"
)

type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Totals struct {
	Lines      []Line          `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	Text       string          `json:"text"`
	ItemsCount int             `json:"items_count"`
	// Unresolved lists product ids that matched neither an embedded
	// snapshot nor the catalog. They count as zero.
	Unresolved []string `json:"unresolved,omitempty"`
}

// Subtotal is the total as a two-place string, e.g. "20.00".
func (t Totals) Subtotal() string {
	return t.Total.StringFixed(2)
}

func ItemSubtotal(product domain.Product, quantity int) decimal.Decimal {
	return money.LineTotal(product.Price, quantity)
}

// Resolve prefers the snapshot embedded in the item and falls back to the
// first catalog product with the same id.
func Resolve(item domain.LineItem, catalog []domain.Product) (domain.Product, bool) {
	if item.Product != nil {
		return *item.Product, true
	}
	for _, p := range catalog {
		if p.ID == item.ProductID {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Aggregate totals items against catalog. Items whose product cannot be
// resolved, and items with a non-positive quantity, contribute zero.
func Aggregate(items []domain.LineItem, catalog []domain.Product) Totals {
	index := indexCatalog(catalog)

	totals := Totals{
		Lines: make([]Line, 0, len(items)),
		Total: decimal.Zero,
	}
	for _, item := range items {
		product, ok := resolveIndexed(item, index)
		if !ok {
			totals.Unresolved = append(totals.Unresolved, item.ProductID)
			continue
		}
		if item.Quantity <= 0 {
			continue
		}

		subtotal := ItemSubtotal(product, item.Quantity)
		totals.Lines = append(totals.Lines, Line{
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price.Decimal,
			Subtotal:  subtotal,
		})
		totals.Total = totals.Total.Add(subtotal)
		totals.ItemsCount += item.Quantity
	}

	sort.Strings(totals.Unresolved)
	totals.Text = money.FormatCurrency(totals.Total)
	return totals
}

// CartPreview aggregates a cart's own snapshot items. The cart's Summary
// stays authoritative.
func CartPreview(cart *domain.Cart) Totals {
	if cart == nil {
		return Aggregate(nil, nil)
	}
	return Aggregate(cart.LineItems(), nil)
}

// OrderTotalText formats the backend's total for an order.
func OrderTotalText(order *domain.Order) string {
	if order == nil {
		return money.FormatCurrency(decimal.Zero)
	}
	return money.FormatCurrency(order.TotalPrice)
}

func indexCatalog(catalog []domain.Product) map[string]domain.Product {
	index := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		if _, seen := index[p.ID]; !seen {
			index[p.ID] = p
		}
	}
	return index
}

func resolveIndexed(item domain.LineItem, index map[string]domain.Product) (domain.Product, bool) {
	if item.Product != nil {
		return *item.Product, true
	}
	p, ok := index[item.ProductID]
	return p, ok
}
