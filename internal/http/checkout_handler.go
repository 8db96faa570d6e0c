package http

import (
	"context"
	"net/http"
	"time"

	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/pricing"
	"github.com/nexstore/storefront/internal/service"
	"github.com/nexstore/storefront/internal/session"
)

type CheckoutHandler struct {
	carts        CartService
	timeout      time.Duration
	cookieSecure bool
}

func NewCheckoutHandler(carts CartService, timeout time.Duration, cookieSecure bool) *CheckoutHandler {
	return &CheckoutHandler{
		carts:        carts,
		timeout:      timeout,
		cookieSecure: cookieSecure,
	}
}

type CheckoutRequestDTO struct {
	ShippingAddress string `json:"shipping_address"`
}

type CheckoutResponseDTO struct {
	Order    OrderResponseDTO `json:"order"`
	Redirect string           `json:"redirect"`
}

type PreviewItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type PreviewRequestDTO struct {
	Items []PreviewItemDTO `json:"items"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.carts.PlaceOrder(ctx, sess, req.ShippingAddress)
	respondResult(w, sess, res, http.StatusCreated, func(res service.Result[*domain.Order]) any {
		return CheckoutResponseDTO{
			Order:    convertOrder(res.Data),
			Redirect: res.Redirect,
		}
	})
}

// POST /api/v1/orders/preview
func (h *CheckoutHandler) PreviewOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PreviewRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.carts.PreviewOrder(ctx, items)
	respondResult(w, sess, res, http.StatusOK, func(res service.Result[pricing.Totals]) any {
		return convertTotals(res.Data)
	})
}
