package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/service"
	"github.com/nexstore/storefront/internal/session"
)

type OrderService interface {
	ListOrders(ctx context.Context, sess *session.Context) service.Result[[]domain.Order]
	GetOrder(ctx context.Context, sess *session.Context, orderID int64) service.Result[*service.OrderDetail]
}

type OrdersHandler struct {
	orders       OrderService
	timeout      time.Duration
	cookieSecure bool
}

func NewOrdersHandler(orders OrderService, timeout time.Duration, cookieSecure bool) *OrdersHandler {
	return &OrdersHandler{
		orders:       orders,
		timeout:      timeout,
		cookieSecure: cookieSecure,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.orders.ListOrders(ctx, sess)
	respondResult(w, sess, res, http.StatusOK, func(res service.Result[[]domain.Order]) any {
		dtos := make([]OrderResponseDTO, 0, len(res.Data))
		for i := range res.Data {
			dtos = append(dtos, convertOrder(&res.Data[i]))
		}
		return dtos
	})
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a positive integer")
		return
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.orders.GetOrder(ctx, sess, orderID)
	respondResult(w, sess, res, http.StatusOK, func(res service.Result[*service.OrderDetail]) any {
		return convertOrder(res.Data.Order)
	})
}
