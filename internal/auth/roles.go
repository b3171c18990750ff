package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

// Authorize checks that the principal holds role.
func Authorize(principal *Principal, role domain.Role) error {
	if principal == nil || !principal.User.HasRole(role) {
		return apperrors.NewForbidden("insufficient permissions")
	}
	return nil
}

// RequireRole must run after Authenticate.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(principal, role); err != nil {
			return err
		}
		return c.Next()
	}
}
