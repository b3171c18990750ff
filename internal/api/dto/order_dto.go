package dto

import (
	"time"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

type OrderItemResponse struct {
	Product  *ProductResponse `json:"product"`
	Quantity int              `json:"quantity"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	Number    string              `json:"number"`
	Account   string              `json:"account,omitempty"`
	Items     []OrderItemResponse `json:"cart"`
	CreatedAt time.Time           `json:"createdAt"`
}

// NewOrderResponse renders an order. withAccount is set on the admin listing.
func NewOrderResponse(o *domain.Order, withAccount bool) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		Number:    o.Number,
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt: o.CreatedAt,
	}
	if withAccount {
		resp.Account = o.UserAccount
	}
	for _, item := range o.Items {
		entry := OrderItemResponse{Quantity: item.Quantity}
		if item.Product != nil {
			p := NewProductResponse(item.Product)
			entry.Product = &p
		} else {
			entry.Product = &ProductResponse{ID: item.ProductID}
		}
		resp.Items = append(resp.Items, entry)
	}
	return resp
}

func NewOrderList(orders []domain.Order, withAccount bool) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i], withAccount))
	}
	return out
}
