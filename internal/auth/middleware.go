package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

const principalKey = "auth_principal"

type options struct {
	allowExpired bool
}

// Option customizes Authenticate for a single route.
type Option func(*options)

// AllowExpiredToken lets a signed, still-registered but expired token through.
// Only the extend and logout routes carry it.
func AllowExpiredToken() Option {
	return func(o *options) { o.allowExpired = true }
}

type loginRequest struct {
	Account  *string `json:"account"`
	Password *string `json:"password"`
}

// LoginHandler runs the login protocol on the JSON body and stores the
// resulting principal for the next handler.
func (g *Gate) LoginHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil || req.Account == nil || req.Password == nil {
			return g.reject(protocolLogin, apperrors.NewBadRequest(apperrors.CodeInvalidCredentialFormat, "account and password are required"))
		}
		principal, err := g.Login(c.UserContext(), *req.Account, *req.Password)
		if err != nil {
			return err
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Authenticate validates the bearer token on every request it guards.
func (g *Gate) Authenticate(opts ...Option) fiber.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(c *fiber.Ctx) error {
		principal, err := g.Reauthenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization), o.allowExpired)
		if err != nil {
			return err
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.User != nil
}
