package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

func newMiddlewareApp(f *gateFixture) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	app.Post("/login", f.gate.LoginHandler(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"token": p.Token})
	})
	app.Get("/me", f.gate.Authenticate(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Account)
	})
	app.Patch("/extend", f.gate.Authenticate(AllowExpiredToken()), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.Account)
	})
	app.Get("/admin", f.gate.Authenticate(), RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestLoginHandlerRequiresBothFields(t *testing.T) {
	f := newGateFixture(t, 10)
	app := newMiddlewareApp(f)

	resp, body := doRequest(t, app, http.MethodPost, "/login", "", `{"account":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeInvalidCredentialFormat, body["code"])

	resp, body = doRequest(t, app, http.MethodPost, "/login", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeInvalidCredentialFormat, body["code"])
}

func TestAllowExpiredTokenIsPerRoute(t *testing.T) {
	f := newGateFixture(t, 10)
	f.createUser(t, "alice", "s3cret", domain.RoleMember)
	app := newMiddlewareApp(f)

	resp, body := doRequest(t, app, http.MethodPost, "/login", "", `{"account":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	resp, _ = doRequest(t, app, http.MethodGet, "/me", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	f.clock.Advance(2 * time.Hour)

	resp, body = doRequest(t, app, http.MethodGet, "/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeSessionExpired, body["code"])

	resp, _ = doRequest(t, app, http.MethodPatch, "/extend", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	f := newGateFixture(t, 10)
	f.createUser(t, "member", "pw", domain.RoleMember)
	f.createUser(t, "boss", "pw", domain.RoleAdmin)
	app := newMiddlewareApp(f)

	login := func(account string) string {
		_, body := doRequest(t, app, http.MethodPost, "/login", "", `{"account":"`+account+`","password":"pw"}`)
		return body["token"].(string)
	}

	resp, body := doRequest(t, app, http.MethodGet, "/admin", login("member"), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.CodeForbidden, body["code"])

	resp, _ = doRequest(t, app, http.MethodGet, "/admin", login("boss"), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodGet, "/admin", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeInvalidToken, body["code"])
}
