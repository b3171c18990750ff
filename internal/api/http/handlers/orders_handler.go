package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/dto"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/service"
)

type OrdersHandler struct {
	orders *service.OrderService
}

func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create handles POST /order.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	order, err := h.orders.PlaceOrder(c.UserContext(), p.User)
	if err != nil {
		return err
	}
	return ok(c, dto.NewOrderResponse(order, false))
}

// List handles GET /order.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListForUser(c.UserContext(), p.User.ID)
	if err != nil {
		return err
	}
	return ok(c, dto.NewOrderList(orders, false))
}

// ListAll handles GET /order/all.
func (h *OrdersHandler) ListAll(c *fiber.Ctx) error {
	orders, err := h.orders.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, dto.NewOrderList(orders, true))
}
