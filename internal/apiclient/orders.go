package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/nexstore/storefront/internal/domain"
)

type createOrderBody struct {
	ShippingAddress string `json:"shipping_address"`
}

// CreateOrder turns the cart into an order. Each call carries a fresh
// Idempotency-Key; there is no retry on this side.
func (c *Client) CreateOrder(ctx context.Context, token string, cartID int64, shippingAddress string) (*domain.Order, error) {
	req, err := jsonRequest(http.MethodPost, cartPath(cartID)+"/orders/", token, createOrderBody{
		ShippingAddress: shippingAddress,
	})
	if err != nil {
		return nil, err
	}
	req.headers = map[string]string{"Idempotency-Key": uuid.NewString()}

	var order domain.Order
	if err := c.call(ctx, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	req, err := jsonRequest(http.MethodGet, "/orders/user", token, nil)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	if err := c.call(ctx, req, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, token string, orderID int64) (*domain.Order, error) {
	req, err := jsonRequest(http.MethodGet, "/orders/"+strconv.FormatInt(orderID, 10), token, nil)
	if err != nil {
		return nil, err
	}

	var order domain.Order
	if err := c.call(ctx, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
