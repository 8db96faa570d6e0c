// Package cache keeps rendered cart views close to the storefront so page
// loads do not hit the remote API. Every successful cart mutation deletes
// the entry; nothing is ever patched in place.
package cache

import (
	"context"
	"errors"

	"github.com/nexstore/storefront/internal/domain"
)

type CartViewCache interface {
	Get(ctx context.Context, cartID int64) (*domain.Cart, error)
	Set(ctx context.Context, cartID int64, cart *domain.Cart) error
	Delete(ctx context.Context, cartID int64) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache is used when caching is switched off. Every read misses.
type NopCache struct{}

func (NopCache) Get(context.Context, int64) (*domain.Cart, error) { return nil, ErrCacheMiss }

func (NopCache) Set(context.Context, int64, *domain.Cart) error { return nil }

func (NopCache) Delete(context.Context, int64) error { return nil }
