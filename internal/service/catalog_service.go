package service

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

const defaultItemsPerPage = 10

// ListQuery is the paging and sorting contract shared by catalog listings.
// ItemsPerPage of -1 returns every row.
type ListQuery struct {
	Search       string
	SortBy       string
	SortOrder    string
	Page         int
	ItemsPerPage int
	OnlyListed   bool
}

func (q ListQuery) filter() repository.ListFilter {
	f := repository.ListFilter{
		Search:     q.Search,
		SortBy:     q.SortBy,
		SortDesc:   !strings.EqualFold(q.SortOrder, "asc"),
		OnlyListed: q.OnlyListed,
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if q.ItemsPerPage < 0 {
		return f
	}
	perPage := q.ItemsPerPage
	if perPage == 0 {
		perPage = defaultItemsPerPage
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	f.Limit = perPage
	f.Offset = (page - 1) * perPage
	return f
}

// ListResult carries one page plus the total match count.
type ListResult[T any] struct {
	Data  []T
	Total int
}

// ItemInput is the create/edit payload for products and services. Nil
// fields are left unchanged on edit; Image is empty when nothing was uploaded.
type ItemInput struct {
	Name        *string
	Price       *int
	Description *string
	Category    *string
	Sell        *bool
	Image       string
}

// WorshipInput is the create/edit payload for online worship entries.
type WorshipInput struct {
	Name        *string
	Date        *time.Time
	Description *string
	Image       string
}

// CatalogService manages products, services and online worship entries.
type CatalogService struct {
	products repository.ProductRepository
	services repository.ServiceItemRepository
	worships repository.OnlineWorshipRepository
}

// CatalogDependencies wires the catalog repositories.
type CatalogDependencies struct {
	Products repository.ProductRepository
	Services repository.ServiceItemRepository
	Worships repository.OnlineWorshipRepository
}

func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{products: deps.Products, services: deps.Services, worships: deps.Worships}
}

func categoryValues[T ~string](values []T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func parseID(id, resource string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewInvalidID(resource)
	}
	return nil
}

func mapLookupError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}

func requireCreateFields(in ItemInput, kind string) error {
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NotNil.Error(kind+" name is required")),
		validation.Field(&in.Price, validation.NotNil.Error(kind+" price is required")),
		validation.Field(&in.Description, validation.NotNil.Error(kind+" description is required")),
		validation.Field(&in.Category, validation.NotNil.Error(kind+" category is required")),
		validation.Field(&in.Sell, validation.NotNil.Error(kind+" listing status is required")),
		validation.Field(&in.Image, validation.Required.Error(kind+" image is required")),
	))
}

func validateProduct(p *domain.Product) error {
	return apperrors.FromValidation(validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required.Error("product name is required")),
		validation.Field(&p.Price, validation.Min(0).Error("product price cannot be negative")),
		validation.Field(&p.Image, validation.Required.Error("product image is required")),
		validation.Field(&p.Description, validation.Required.Error("product description is required")),
		validation.Field(&p.Category,
			validation.Required.Error("product category is required"),
			validation.In(categoryValues(domain.ProductCategories)...).Error("invalid product category"),
		),
	))
}

func validateServiceItem(s *domain.ServiceItem) error {
	return apperrors.FromValidation(validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required.Error("service name is required")),
		validation.Field(&s.Price, validation.Min(0).Error("service price cannot be negative")),
		validation.Field(&s.Image, validation.Required.Error("service image is required")),
		validation.Field(&s.Description, validation.Required.Error("service description is required")),
		validation.Field(&s.Category,
			validation.Required.Error("service category is required"),
			validation.In(categoryValues(domain.ServiceCategories)...).Error("invalid service category"),
		),
	))
}

func validateWorship(w *domain.OnlineWorship) error {
	return apperrors.FromValidation(validation.ValidateStruct(w,
		validation.Field(&w.Image, validation.Required.Error("image is required")),
		validation.Field(&w.Name, validation.Required.Error("name is required")),
	))
}

// products

func (s *CatalogService) CreateProduct(ctx context.Context, in ItemInput) (*domain.Product, error) {
	if err := requireCreateFields(in, "product"); err != nil {
		return nil, err
	}
	product := &domain.Product{Image: in.Image}
	applyProduct(product, in)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ItemInput) (*domain.Product, error) {
	if err := parseID(id, "product"); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "product")
	}
	applyProduct(product, in)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, mapLookupError(err, "product")
	}
	return product, nil
}

func applyProduct(p *domain.Product, in ItemInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = domain.ProductCategory(*in.Category)
	}
	if in.Sell != nil {
		p.Sell = *in.Sell
	}
	if in.Image != "" {
		p.Image = in.Image
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if err := parseID(id, "product"); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "product")
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ListQuery) (*ListResult[domain.Product], error) {
	items, total, err := s.products.List(ctx, q.filter())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ListResult[domain.Product]{Data: items, Total: total}, nil
}

// services

func (s *CatalogService) CreateService(ctx context.Context, in ItemInput) (*domain.ServiceItem, error) {
	if err := requireCreateFields(in, "service"); err != nil {
		return nil, err
	}
	item := &domain.ServiceItem{Image: in.Image}
	applyServiceItem(item, in)
	if err := validateServiceItem(item); err != nil {
		return nil, err
	}
	if err := s.services.Create(ctx, item); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return item, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id string, in ItemInput) (*domain.ServiceItem, error) {
	if err := parseID(id, "service"); err != nil {
		return nil, err
	}
	item, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "service")
	}
	applyServiceItem(item, in)
	if err := validateServiceItem(item); err != nil {
		return nil, err
	}
	if err := s.services.Update(ctx, item); err != nil {
		return nil, mapLookupError(err, "service")
	}
	return item, nil
}

func applyServiceItem(v *domain.ServiceItem, in ItemInput) {
	if in.Name != nil {
		v.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		v.Price = *in.Price
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.Category != nil {
		v.Category = domain.ServiceCategory(*in.Category)
	}
	if in.Sell != nil {
		v.Sell = *in.Sell
	}
	if in.Image != "" {
		v.Image = in.Image
	}
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.ServiceItem, error) {
	if err := parseID(id, "service"); err != nil {
		return nil, err
	}
	item, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "service")
	}
	return item, nil
}

func (s *CatalogService) ListServices(ctx context.Context, q ListQuery) (*ListResult[domain.ServiceItem], error) {
	items, total, err := s.services.List(ctx, q.filter())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ListResult[domain.ServiceItem]{Data: items, Total: total}, nil
}

// online worship

func (s *CatalogService) CreateWorship(ctx context.Context, in WorshipInput) (*domain.OnlineWorship, error) {
	entry := &domain.OnlineWorship{}
	applyWorship(entry, in)
	if err := validateWorship(entry); err != nil {
		return nil, err
	}
	if err := s.worships.Create(ctx, entry); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entry, nil
}

func (s *CatalogService) UpdateWorship(ctx context.Context, id string, in WorshipInput) (*domain.OnlineWorship, error) {
	if err := parseID(id, "online worship"); err != nil {
		return nil, err
	}
	entry, err := s.worships.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "online worship")
	}
	applyWorship(entry, in)
	if err := validateWorship(entry); err != nil {
		return nil, err
	}
	if err := s.worships.Update(ctx, entry); err != nil {
		return nil, mapLookupError(err, "online worship")
	}
	return entry, nil
}

func applyWorship(w *domain.OnlineWorship, in WorshipInput) {
	if in.Name != nil {
		w.Name = strings.TrimSpace(*in.Name)
	}
	if in.Date != nil {
		date := in.Date.UTC()
		w.Date = &date
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if in.Image != "" {
		w.Image = in.Image
	}
}

func (s *CatalogService) GetWorship(ctx context.Context, id string) (*domain.OnlineWorship, error) {
	if err := parseID(id, "online worship"); err != nil {
		return nil, err
	}
	entry, err := s.worships.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "online worship")
	}
	return entry, nil
}

func (s *CatalogService) ListWorships(ctx context.Context, q ListQuery) (*ListResult[domain.OnlineWorship], error) {
	items, total, err := s.worships.List(ctx, q.filter())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ListResult[domain.OnlineWorship]{Data: items, Total: total}, nil
}
