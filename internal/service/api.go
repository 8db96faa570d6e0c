package service

import (
	"context"

	"github.com/nexstore/storefront/internal/apiclient"
	"github.com/nexstore/storefront/internal/domain"
)

// The remote API, split by the service that needs it. *apiclient.Client
// satisfies all of them.

type CartAPI interface {
	CreateCart(ctx context.Context, token string) (int64, error)
	GetCart(ctx context.Context, token string, cartID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, token string, cartID int64, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, token string, cartID int64, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, token string, cartID int64, productID string) (*domain.Cart, error)
	CreateOrder(ctx context.Context, token string, cartID int64, shippingAddress string) (*domain.Order, error)
}

type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type OrderAPI interface {
	ListOrders(ctx context.Context, token string) ([]domain.Order, error)
	GetOrder(ctx context.Context, token string, orderID int64) (*domain.Order, error)
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*apiclient.Token, error)
	Register(ctx context.Context, in apiclient.RegisterRequest) (*domain.User, error)
	Me(ctx context.Context, token string) (*domain.User, error)
}

var (
	_ CartAPI    = (*apiclient.Client)(nil)
	_ CatalogAPI = (*apiclient.Client)(nil)
	_ OrderAPI   = (*apiclient.Client)(nil)
	_ AuthAPI    = (*apiclient.Client)(nil)
)
