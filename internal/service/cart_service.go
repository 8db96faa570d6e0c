package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nexstore/storefront/internal/apiclient"
	"github.com/nexstore/storefront/internal/cache"
	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/mutation"
	"github.com/nexstore/storefront/internal/pricing"
	"github.com/nexstore/storefront/internal/session"
	"github.com/nexstore/storefront/internal/validation"
	"github.com/nexstore/storefront/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cacheOpTimeout = time.Second

type CartService struct {
	api     CartAPI
	catalog CatalogAPI
	cache   cache.CartViewCache
	tracker *mutation.Tracker
	logger  *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(api CartAPI, catalog CatalogAPI, c cache.CartViewCache, tracker *mutation.Tracker, logger *zap.Logger) *CartService {
	return &CartService{
		api:     api,
		catalog: catalog,
		cache:   c,
		tracker: tracker,
		logger:  logger,
	}
}

// GetCart returns the visitor's cart, or nil Data when there is none yet.
// A cart id the backend no longer knows is dropped from the session.
func (s *CartService) GetCart(ctx context.Context, sess *session.Context) Result[*domain.Cart] {
	if !sess.HasCart() {
		return success[*domain.Cart](nil)
	}
	cartID := sess.CartID

	v, err, _ := s.sfg.Do(strconv.FormatInt(cartID, 10), func() (any, error) {
		cart, err := s.cache.Get(ctx, cartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn(ctx, s.logger, "cache get error", zap.Int64("cart_id", cartID), zap.Error(err))
		}

		cart, err = s.api.GetCart(ctx, sess.Token, cartID)
		if err != nil {
			return nil, err
		}
		s.storeCache(ctx, cartID, cart)
		return cart, nil
	})
	if err != nil {
		if apiclient.IsNotFound(err) {
			s.dropCart(ctx, sess)
			return success[*domain.Cart](nil)
		}
		logger.Warn(ctx, s.logger, "get cart failed", zap.Int64("cart_id", cartID), zap.Error(err))
		return failure[*domain.Cart](err)
	}
	return success(v.(*domain.Cart))
}

// AddItem creates the cart on first use and remembers its id in the session.
func (s *CartService) AddItem(ctx context.Context, sess *session.Context, productID string, quantity int) Result[*domain.Cart] {
	form := validation.CartItemForm{ProductID: productID, Quantity: quantity}
	if errs := validation.Validate(form); len(errs) > 0 {
		return invalid[*domain.Cart](validation.FieldErrors(errs))
	}

	done, err := track(ctx, s.tracker, s.logger, sess.Key(), mutation.ActionAddItem)
	if err != nil {
		return busy[*domain.Cart]()
	}
	res := s.addItem(ctx, sess, productID, quantity)
	done(res.OK())
	return res
}

func (s *CartService) addItem(ctx context.Context, sess *session.Context, productID string, quantity int) Result[*domain.Cart] {
	created := false
	if !sess.HasCart() {
		cartID, err := s.api.CreateCart(ctx, sess.Token)
		if err != nil {
			logger.Error(ctx, s.logger, "create cart failed", zap.Error(err))
			return failure[*domain.Cart](err)
		}
		sess.SetCartID(cartID)
		created = true
		logger.Info(ctx, s.logger, "cart created", zap.Int64("cart_id", cartID))
	}

	cart, err := s.api.AddItem(ctx, sess.Token, sess.CartID, productID, quantity)
	if err != nil && !created && apiclient.IsNotFound(err) && s.cartGone(ctx, sess) {
		// The session has no cart now, so this goes through CreateCart once.
		s.dropCart(ctx, sess)
		return s.addItem(ctx, sess, productID, quantity)
	}
	if err != nil {
		logger.Warn(ctx, s.logger, "add item failed",
			zap.Int64("cart_id", sess.CartID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return failure[*domain.Cart](err)
	}

	s.invalidate(ctx, sess.CartID)
	return success(cart)
}

// UpdateQuantity sets an item's quantity. Zero or less removes the item.
func (s *CartService) UpdateQuantity(ctx context.Context, sess *session.Context, productID string, quantity int) Result[*domain.Cart] {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sess, productID)
	}
	form := validation.CartItemForm{ProductID: productID, Quantity: quantity}
	if errs := validation.Validate(form); len(errs) > 0 {
		return invalid[*domain.Cart](validation.FieldErrors(errs))
	}
	if !sess.HasCart() {
		return success(domain.EmptyCart())
	}

	done, err := track(ctx, s.tracker, s.logger, sess.Key(), mutation.ActionUpdateItem)
	if err != nil {
		return busy[*domain.Cart]()
	}

	cart, err := s.api.UpdateItem(ctx, sess.Token, sess.CartID, productID, quantity)
	if apiclient.IsNotFound(err) && s.cartGone(ctx, sess) {
		s.dropCart(ctx, sess)
		done(true)
		return success(domain.EmptyCart())
	}
	if err != nil {
		logger.Warn(ctx, s.logger, "update item failed",
			zap.Int64("cart_id", sess.CartID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		done(false)
		return failure[*domain.Cart](err)
	}

	s.invalidate(ctx, sess.CartID)
	done(true)
	return success(cart)
}

// RemoveItem is idempotent: removing an item that is not in the cart
// succeeds and returns the cart as it is. A cart the backend no longer
// knows is dropped from the session and reads as empty.
func (s *CartService) RemoveItem(ctx context.Context, sess *session.Context, productID string) Result[*domain.Cart] {
	if !sess.HasCart() {
		return success(domain.EmptyCart())
	}

	done, err := track(ctx, s.tracker, s.logger, sess.Key(), mutation.ActionRemoveItem)
	if err != nil {
		return busy[*domain.Cart]()
	}

	cart, err := s.api.RemoveItem(ctx, sess.Token, sess.CartID, productID)
	if apiclient.IsNotFound(err) {
		cart, err = s.api.GetCart(ctx, sess.Token, sess.CartID)
		if apiclient.IsNotFound(err) {
			s.dropCart(ctx, sess)
			done(true)
			return success(domain.EmptyCart())
		}
	}
	if err != nil {
		logger.Warn(ctx, s.logger, "remove item failed",
			zap.Int64("cart_id", sess.CartID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		done(false)
		return failure[*domain.Cart](err)
	}

	s.invalidate(ctx, sess.CartID)
	done(true)
	return success(cart)
}

// PlaceOrder checks out the session's cart. The address is validated before
// anything is sent. On success the cart cookie is cleared and Redirect
// points at the new order.
func (s *CartService) PlaceOrder(ctx context.Context, sess *session.Context, shippingAddress string) Result[*domain.Order] {
	shippingAddress = strings.TrimSpace(shippingAddress)
	if errs := validation.Validate(validation.CheckoutForm{ShippingAddress: shippingAddress}); len(errs) > 0 {
		return invalid[*domain.Order](validation.FieldErrors(errs))
	}
	if !sess.HasCart() {
		return rejected[*domain.Order](MessageEmptyCart)
	}

	done, err := track(ctx, s.tracker, s.logger, sess.Key(), mutation.ActionCheckout)
	if err != nil {
		return busy[*domain.Order]()
	}

	cartID := sess.CartID
	order, err := s.api.CreateOrder(ctx, sess.Token, cartID, shippingAddress)
	if err != nil {
		logger.Warn(ctx, s.logger, "checkout failed", zap.Int64("cart_id", cartID), zap.Error(err))
		done(false)
		return failure[*domain.Order](err)
	}

	s.invalidate(ctx, cartID)
	sess.ClearCartID()
	done(true)

	logger.Info(ctx, s.logger, "order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("cart_id", cartID),
		zap.String("total", order.TotalPrice.Fixed()),
	)
	res := success(order)
	res.Redirect = fmt.Sprintf("/store/orders/%d", order.ID)
	return res
}

// PreviewOrder totals a draft locally. The catalog is only fetched when
// some item carries no product snapshot.
func (s *CartService) PreviewOrder(ctx context.Context, items []domain.LineItem) Result[pricing.Totals] {
	draft := validation.OrderDraft{Items: make([]validation.OrderDraftItem, 0, len(items))}
	for _, item := range items {
		draft.Items = append(draft.Items, validation.OrderDraftItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if errs := validation.Validate(draft); len(errs) > 0 {
		return invalid[pricing.Totals](validation.FieldErrors(errs))
	}

	var catalog []domain.Product
	if needsCatalog(items) {
		products, err := s.catalog.ListProducts(ctx)
		if err != nil {
			logger.Warn(ctx, s.logger, "list products failed", zap.Error(err))
			return failure[pricing.Totals](err)
		}
		catalog = products
	}
	return success(pricing.Aggregate(items, catalog))
}

func needsCatalog(items []domain.LineItem) bool {
	for _, item := range items {
		if item.Product == nil {
			return true
		}
	}
	return false
}

// cartGone reports whether the backend has confirmed the session's cart id
// no longer exists. A 404 from an item call alone can mean a missing product.
func (s *CartService) cartGone(ctx context.Context, sess *session.Context) bool {
	_, err := s.api.GetCart(ctx, sess.Token, sess.CartID)
	return apiclient.IsNotFound(err)
}

func (s *CartService) dropCart(ctx context.Context, sess *session.Context) {
	cartID := sess.CartID
	logger.Info(ctx, s.logger, "stale cart id dropped", zap.Int64("cart_id", cartID))
	s.invalidate(ctx, cartID)
	sess.ClearCartID()
}

func (s *CartService) storeCache(ctx context.Context, cartID int64, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOpTimeout)
	defer cancel()
	if err := s.cache.Set(ctx, cartID, cart); err != nil {
		logger.Warn(ctx, s.logger, "cache set error", zap.Int64("cart_id", cartID), zap.Error(err))
	}
}

func (s *CartService) invalidate(ctx context.Context, cartID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOpTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, cartID); err != nil {
		logger.Warn(ctx, s.logger, "cache invalidate error", zap.Int64("cart_id", cartID), zap.Error(err))
	}
}
