package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/dto"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/auth"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/service"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/storage"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

func ok(c *fiber.Ctx, result any) error {
	return c.Status(http.StatusOK).JSON(dto.Envelope{Success: true, Message: "", Result: result})
}

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, found := auth.PrincipalFromContext(c)
	if !found {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

// listQuery reads search, sortBy, sortOrder, page and itemsPerPage.
// defaultPerPage applies when itemsPerPage is absent.
func listQuery(c *fiber.Ctx, onlyListed bool, defaultPerPage int) service.ListQuery {
	return service.ListQuery{
		Search:       c.Query("search"),
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		Page:         c.QueryInt("page", 1),
		ItemsPerPage: c.QueryInt("itemsPerPage", defaultPerPage),
		OnlyListed:   onlyListed,
	}
}

// uploadImage stores the "image" form file when present and returns its path.
func uploadImage(ctx context.Context, c *fiber.Ctx, uploader storage.Uploader) (string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return "", nil
		}
		return "", apperrors.NewValidationError("invalid image upload", nil)
	}
	return uploader.Save(ctx, header)
}
