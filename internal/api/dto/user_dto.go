package dto

import (
	"time"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// Envelope wraps every response body. Code is only set on failures.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// UserRegisterRequest payload for new members.
type UserRegisterRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for PATCH /user/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// EditCartRequest changes one cart line by Quantity.
type EditCartRequest struct {
	Product  string `json:"product"`
	Quantity *int   `json:"quantity"`
}

// SessionResponse is returned by login and profile.
type SessionResponse struct {
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Account   string     `json:"account"`
	Role      string     `json:"role"`
	Cart      int        `json:"cart"`
}

// TokenResponse is returned by extend.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CartLineResponse is one resolved cart line.
type CartLineResponse struct {
	Product  *ProductResponse `json:"product"`
	Quantity int              `json:"quantity"`
}

// NewSessionResponse describes the user. Token and expiry are only set on login.
func NewSessionResponse(user *domain.User, token string, expiresAt time.Time) SessionResponse {
	resp := SessionResponse{
		Account: user.Account,
		Role:    string(user.Role),
		Cart:    user.CartSize(),
	}
	if token != "" {
		resp.Token = token
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// NewCartResponse keeps lines whose product was deleted, carrying only the id.
func NewCartResponse(lines []domain.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, 0, len(lines))
	for _, line := range lines {
		entry := CartLineResponse{Quantity: line.Quantity}
		if line.Product != nil {
			p := NewProductResponse(line.Product)
			entry.Product = &p
		} else {
			entry.Product = &ProductResponse{ID: line.ProductID}
		}
		out = append(out, entry)
	}
	return out
}
