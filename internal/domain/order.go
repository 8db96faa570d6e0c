package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nexstore/storefront/internal/money"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusShipped  OrderStatus = "shipped"
	OrderStatusCanceled OrderStatus = "canceled"
)

var ErrUnknownOrderStatus = errors.New("unknown order status")

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusCanceled,
}

// ParseOrderStatus accepts only the declared statuses. Values the backend
// has been seen to send outside of them, such as "delivered", are rejected.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOrderStatus, s)
	}
	return status, nil
}

func (s OrderStatus) Known() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order can no longer change status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCanceled
}

func (s OrderStatus) String() string {
	return string(s)
}

type OrderUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// OrderItem carries the price captured when the order was placed, which is
// independent of the product's current price.
type OrderItem struct {
	ID        int64        `json:"id"`
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
	Product   *Product     `json:"product,omitempty"`
}

type Order struct {
	ID              int64        `json:"id"`
	Status          OrderStatus  `json:"status"`
	ShippingAddress string       `json:"shipping_address"`
	CreatedAt       string       `json:"created_at"`
	TotalPrice      money.Amount `json:"total_price"`
	User            *OrderUser   `json:"user,omitempty"`
	Items           []OrderItem  `json:"order_items"`
}

// ComputedTotal sums the captured item prices. The backend's TotalPrice
// should always equal it.
func (o *Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(money.LineTotal(item.Price, item.Quantity))
	}
	return total
}
