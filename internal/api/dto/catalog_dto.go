package dto

import (
	"time"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// ItemForm is the multipart form for product and service create/edit.
// Every field is optional so edits can be partial.
type ItemForm struct {
	Name        *string `form:"name"`
	Price       *int    `form:"price"`
	Description *string `form:"description"`
	Category    *string `form:"category"`
	Sell        *bool   `form:"sell"`
}

// WorshipForm is the multipart form for online worship create/edit.
type WorshipForm struct {
	Name        *string `form:"name"`
	Date        *string `form:"date"`
	Description *string `form:"description"`
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Price       int       `json:"price"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Sell        bool      `json:"sell"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ServiceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int       `json:"price"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Sell        bool      `json:"sell"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type WorshipResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Image       string     `json:"image"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ListResponse is the {data, total} listing shape.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		Category:    string(p.Category),
		Sell:        p.Sell,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewServiceResponse(s *domain.ServiceItem) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Price:       s.Price,
		Image:       s.Image,
		Description: s.Description,
		Category:    string(s.Category),
		Sell:        s.Sell,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func NewWorshipResponse(w *domain.OnlineWorship) WorshipResponse {
	return WorshipResponse{
		ID:          w.ID,
		Name:        w.Name,
		Image:       w.Image,
		Date:        w.Date,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// MapList converts a page of domain rows into response rows.
func MapList[D, R any](items []D, total int, convert func(*D) R) ListResponse[R] {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, convert(&items[i]))
	}
	return ListResponse[R]{Data: out, Total: total}
}
