package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/dto"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/service"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

// UsersHandler exposes account, session and cart endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	carts *service.CartService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, carts *service.CartService) *UsersHandler {
	return &UsersHandler{auth: authService, carts: carts}
}

// Register handles POST /user.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.auth.Register(c.UserContext(), service.RegisterInput{Account: req.Account, Password: req.Password}); err != nil {
		return err
	}
	return ok(c, nil)
}

// Login handles POST /user/login after the gate's login handler.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return ok(c, dto.NewSessionResponse(p.User, p.Token, p.ExpiresAt))
}

// Extend handles PATCH /user/extend.
func (h *UsersHandler) Extend(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	next, err := h.auth.Extend(c.UserContext(), p)
	if err != nil {
		return err
	}
	return ok(c, dto.TokenResponse{Token: next.Token, ExpiresAt: next.ExpiresAt})
}

// Profile handles GET /user/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return ok(c, dto.NewSessionResponse(p.User, "", p.ExpiresAt))
}

// Logout handles DELETE /user/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), p); err != nil {
		return err
	}
	return ok(c, nil)
}

// ChangePassword handles PATCH /user/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	in := service.ChangePasswordInput{Current: req.CurrentPassword, New: req.NewPassword}
	if err := h.auth.ChangePassword(c.UserContext(), p, in); err != nil {
		return err
	}
	return ok(c, nil)
}

// EditCart handles PATCH /user/cart.
func (h *UsersHandler) EditCart(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.EditCartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Quantity == nil {
		return apperrors.NewValidationError("quantity is required", nil)
	}
	total, err := h.carts.EditCart(c.UserContext(), p.User.ID, req.Product, *req.Quantity)
	if err != nil {
		return err
	}
	return ok(c, total)
}

// GetCart handles GET /user/cart.
func (h *UsersHandler) GetCart(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	lines, err := h.carts.GetCart(c.UserContext(), p.User.ID)
	if err != nil {
		return err
	}
	return ok(c, dto.NewCartResponse(lines))
}
