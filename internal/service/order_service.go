package service

import (
	"context"
	"net/http"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/events"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/observability"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

const orderNumberPrefix = "ORD-"

// OrderService converts carts into orders.
type OrderService struct {
	users      repository.UserRepository
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// OrderDependencies wires the order service. Dispatcher and Metrics are optional.
type OrderDependencies struct {
	Users      repository.UserRepository
	Orders     repository.OrderRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		users:      deps.Users,
		orders:     deps.Orders,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// PlaceOrder snapshots the user's cart into an order and clears the cart in
// the same transaction. Nothing is written when any product is delisted.
func (s *OrderService) PlaceOrder(ctx context.Context, user *domain.User) (*domain.Order, error) {
	if len(user.Cart) == 0 {
		return nil, apperrors.NewBadRequest(apperrors.CodeEmptyCart, "cart is empty")
	}

	lines, err := s.users.CartLines(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(lines) == 0 {
		return nil, apperrors.NewBadRequest(apperrors.CodeEmptyCart, "cart is empty")
	}
	for _, line := range lines {
		if !line.Listed() {
			return nil, apperrors.NewDomainError(apperrors.CodeDelistedItem, "cart contains products that are no longer for sale", http.StatusBadRequest,
				map[string]any{"product_id": line.ProductID})
		}
	}

	order := &domain.Order{
		Number:      orderNumberPrefix + ulid.Make().String(),
		UserID:      user.ID,
		UserAccount: user.Account,
		Items:       make([]domain.OrderItem, 0, len(lines)),
	}
	quantity := 0
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity, Product: line.Product})
		quantity += line.Quantity
	}
	if err := order.Validate(); err != nil {
		return nil, apperrors.FromValidation(err)
	}

	if err := s.orders.CreateAndClearCart(ctx, order); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordOrderPlaced()
	if s.dispatcher != nil {
		event := events.NewEvent(events.EventOrderPlaced, user.ID, events.OrderPlacedPayload{
			OrderID:   order.ID,
			Number:    order.Number,
			ItemCount: len(order.Items),
			Quantity:  quantity,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("order_placed handler failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	return order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return orders, nil
}

// ListAll returns every order, newest first.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return orders, nil
}
