package service

import (
	"context"

	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/pricing"
	"github.com/nexstore/storefront/internal/session"
	"github.com/nexstore/storefront/pkg/logger"
	"go.uber.org/zap"
)

type OrderService struct {
	api    OrderAPI
	logger *zap.Logger
}

func NewOrderService(api OrderAPI, logger *zap.Logger) *OrderService {
	return &OrderService{api: api, logger: logger}
}

type OrderDetail struct {
	Order     *domain.Order
	TotalText string
	// Consistent is false when the captured item prices do not add up to
	// the backend's total.
	Consistent bool
}

func (s *OrderService) ListOrders(ctx context.Context, sess *session.Context) Result[[]domain.Order] {
	if !sess.Authenticated() {
		return unauthorized[[]domain.Order](MessageLoginRequired)
	}

	orders, err := s.api.ListOrders(ctx, sess.Token)
	if err != nil {
		logger.Warn(ctx, s.logger, "list orders failed", zap.Error(err))
		return failure[[]domain.Order](err)
	}
	return success(orders)
}

func (s *OrderService) GetOrder(ctx context.Context, sess *session.Context, orderID int64) Result[*OrderDetail] {
	if !sess.Authenticated() {
		return unauthorized[*OrderDetail](MessageLoginRequired)
	}

	order, err := s.api.GetOrder(ctx, sess.Token, orderID)
	if err != nil {
		logger.Warn(ctx, s.logger, "get order failed", zap.Int64("order_id", orderID), zap.Error(err))
		return failure[*OrderDetail](err)
	}

	detail := &OrderDetail{
		Order:      order,
		TotalText:  pricing.OrderTotalText(order),
		Consistent: order.ComputedTotal().Round(2).Equal(order.TotalPrice.Decimal.Round(2)),
	}
	if !detail.Consistent {
		logger.Warn(ctx, s.logger, "order total mismatch",
			zap.Int64("order_id", order.ID),
			zap.String("total_price", order.TotalPrice.Fixed()),
			zap.String("computed", order.ComputedTotal().StringFixed(2)),
		)
	}
	if !order.Status.Known() {
		logger.Debug(ctx, s.logger, "undocumented order status", zap.Stringer("status", order.Status))
	}
	return success(detail)
}
