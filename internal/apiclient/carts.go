package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nexstore/storefront/internal/domain"
)

type addItemBody struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemBody struct {
	Quantity int `json:"quantity"`
}

// CreateCart returns the id of a new empty cart. The backend answers with
// the id as a JSON string; a bare number is accepted too.
func (c *Client) CreateCart(ctx context.Context, token string) (int64, error) {
	req, err := jsonRequest(http.MethodPost, "/carts", token, nil)
	if err != nil {
		return 0, err
	}

	var raw json.RawMessage
	if err := c.call(ctx, req, &raw); err != nil {
		return 0, err
	}

	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return 0, transportError(http.StatusCreated, fmt.Errorf("unexpected cart id %q", text))
	}
	return id, nil
}

func (c *Client) GetCart(ctx context.Context, token string, cartID int64) (*domain.Cart, error) {
	req, err := jsonRequest(http.MethodGet, cartPath(cartID), token, nil)
	if err != nil {
		return nil, err
	}
	return c.cart(ctx, req)
}

func (c *Client) AddItem(ctx context.Context, token string, cartID int64, productID string, quantity int) (*domain.Cart, error) {
	req, err := jsonRequest(http.MethodPost, cartPath(cartID)+"/items", token, addItemBody{
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return nil, err
	}
	return c.cart(ctx, req)
}

func (c *Client) UpdateItem(ctx context.Context, token string, cartID int64, productID string, quantity int) (*domain.Cart, error) {
	req, err := jsonRequest(http.MethodPut, itemPath(cartID, productID), token, updateItemBody{Quantity: quantity})
	if err != nil {
		return nil, err
	}
	return c.cart(ctx, req)
}

func (c *Client) RemoveItem(ctx context.Context, token string, cartID int64, productID string) (*domain.Cart, error) {
	req, err := jsonRequest(http.MethodDelete, itemPath(cartID, productID), token, nil)
	if err != nil {
		return nil, err
	}
	return c.cart(ctx, req)
}

func (c *Client) cart(ctx context.Context, req request) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.call(ctx, req, &cart); err != nil {
		return nil, err
	}
	cart.Normalize()
	return &cart, nil
}

func cartPath(cartID int64) string {
	return "/carts/" + strconv.FormatInt(cartID, 10)
}

func itemPath(cartID int64, productID string) string {
	return cartPath(cartID) + "/items/" + url.PathEscape(productID)
}
