package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/pricing"
	"github.com/nexstore/storefront/internal/service"
	"github.com/nexstore/storefront/internal/session"
)

type CartService interface {
	GetCart(ctx context.Context, sess *session.Context) service.Result[*domain.Cart]
	AddItem(ctx context.Context, sess *session.Context, productID string, quantity int) service.Result[*domain.Cart]
	UpdateQuantity(ctx context.Context, sess *session.Context, productID string, quantity int) service.Result[*domain.Cart]
	RemoveItem(ctx context.Context, sess *session.Context, productID string) service.Result[*domain.Cart]
	PlaceOrder(ctx context.Context, sess *session.Context, shippingAddress string) service.Result[*domain.Order]
	PreviewOrder(ctx context.Context, items []domain.LineItem) service.Result[pricing.Totals]
}

type CartHandler struct {
	carts        CartService
	timeout      time.Duration
	cookieSecure bool
}

func NewCartHandler(carts CartService, timeout time.Duration, cookieSecure bool) *CartHandler {
	return &CartHandler{
		carts:        carts,
		timeout:      timeout,
		cookieSecure: cookieSecure,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.carts.GetCart(ctx, sess)
	respondResult(w, sess, res, http.StatusOK, renderCart)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.carts.AddItem(ctx, sess, req.ProductID, quantity)
	respondResult(w, sess, res, http.StatusCreated, renderCart)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "missing_quantity", "quantity is required")
		return
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.carts.UpdateQuantity(ctx, sess, productID, *req.Quantity)
	respondResult(w, sess, res, http.StatusOK, renderCart)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.carts.RemoveItem(ctx, sess, productID)
	respondResult(w, sess, res, http.StatusOK, renderCart)
}

func renderCart(res service.Result[*domain.Cart]) any {
	return convertCart(res.Data)
}
