package apiclient

import (
	"context"
	"net/http"

	"github.com/nexstore/storefront/internal/domain"
)

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := jsonRequest(http.MethodGet, "/products/", "", nil)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := c.call(ctx, req, &products); err != nil {
		return nil, err
	}
	return products, nil
}
