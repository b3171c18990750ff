package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/dto"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/service"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/storage"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

// CatalogHandler serves products, services and online worship entries.
type CatalogHandler struct {
	catalog  *service.CatalogService
	uploader storage.Uploader
}

func NewCatalogHandler(catalog *service.CatalogService, uploader storage.Uploader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, uploader: uploader}
}

func (h *CatalogHandler) itemInput(c *fiber.Ctx) (service.ItemInput, error) {
	var form dto.ItemForm
	if err := c.BodyParser(&form); err != nil {
		return service.ItemInput{}, apperrors.NewValidationError("invalid form", nil)
	}
	image, err := uploadImage(c.UserContext(), c, h.uploader)
	if err != nil {
		return service.ItemInput{}, err
	}
	return service.ItemInput{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Category:    form.Category,
		Sell:        form.Sell,
		Image:       image,
	}, nil
}

func (h *CatalogHandler) worshipInput(c *fiber.Ctx) (service.WorshipInput, error) {
	var form dto.WorshipForm
	if err := c.BodyParser(&form); err != nil {
		return service.WorshipInput{}, apperrors.NewValidationError("invalid form", nil)
	}
	in := service.WorshipInput{Name: form.Name, Description: form.Description}
	if form.Date != nil && strings.TrimSpace(*form.Date) != "" {
		date, err := parseDate(*form.Date)
		if err != nil {
			return service.WorshipInput{}, apperrors.NewValidationError("invalid date", nil)
		}
		in.Date = &date
	}
	image, err := uploadImage(c.UserContext(), c, h.uploader)
	if err != nil {
		return service.WorshipInput{}, err
	}
	in.Image = image
	return in, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// products

// CreateProduct handles POST /product.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	in, err := h.itemInput(c)
	if err != nil {
		return err
	}
	product, err := h.catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, dto.NewProductResponse(product))
}

// ListListedProducts handles GET /product. Only products on sale are shown.
func (h *CatalogHandler) ListListedProducts(c *fiber.Ctx) error {
	return h.listProducts(c, true, -1)
}

// ListProducts handles GET /product/all.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	return h.listProducts(c, false, 10)
}

func (h *CatalogHandler) listProducts(c *fiber.Ctx, onlyListed bool, perPage int) error {
	result, err := h.catalog.ListProducts(c.UserContext(), listQuery(c, onlyListed, perPage))
	if err != nil {
		return err
	}
	return ok(c, dto.MapList(result.Data, result.Total, dto.NewProductResponse))
}

// GetProduct handles GET /product/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, dto.NewProductResponse(product))
}

// UpdateProduct handles PATCH /product/:id.
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	in, err := h.itemInput(c)
	if err != nil {
		return err
	}
	product, err := h.catalog.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, dto.NewProductResponse(product))
}

// services

func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	in, err := h.itemInput(c)
	if err != nil {
		return err
	}
	item, err := h.catalog.CreateService(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, dto.NewServiceResponse(item))
}

func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	result, err := h.catalog.ListServices(c.UserContext(), listQuery(c, false, 10))
	if err != nil {
		return err
	}
	return ok(c, dto.MapList(result.Data, result.Total, dto.NewServiceResponse))
}

func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	item, err := h.catalog.GetService(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, dto.NewServiceResponse(item))
}

func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	in, err := h.itemInput(c)
	if err != nil {
		return err
	}
	item, err := h.catalog.UpdateService(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, dto.NewServiceResponse(item))
}

// online worship

func (h *CatalogHandler) CreateWorship(c *fiber.Ctx) error {
	in, err := h.worshipInput(c)
	if err != nil {
		return err
	}
	entry, err := h.catalog.CreateWorship(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, dto.NewWorshipResponse(entry))
}

// ListWorships serves both GET /online-worship (every entry) and
// GET /online-worship/all (paged by default).
func (h *CatalogHandler) ListWorships(perPage int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := h.catalog.ListWorships(c.UserContext(), listQuery(c, false, perPage))
		if err != nil {
			return err
		}
		return ok(c, dto.MapList(result.Data, result.Total, dto.NewWorshipResponse))
	}
}

func (h *CatalogHandler) GetWorship(c *fiber.Ctx) error {
	entry, err := h.catalog.GetWorship(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, dto.NewWorshipResponse(entry))
}

func (h *CatalogHandler) UpdateWorship(c *fiber.Ctx) error {
	in, err := h.worshipInput(c)
	if err != nil {
		return err
	}
	entry, err := h.catalog.UpdateWorship(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, dto.NewWorshipResponse(entry))
}
