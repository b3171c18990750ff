package service

import (
	"context"
	"errors"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

// CartService edits and reads a user's cart.
type CartService struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

func NewCartService(users repository.UserRepository, products repository.ProductRepository) *CartService {
	return &CartService{users: users, products: products}
}

// EditCart applies quantity as a delta to the line for productID. A line
// that drops to zero or below is removed. New lines need a positive quantity
// and a listed product. Returns the total quantity left in the cart.
func (s *CartService) EditCart(ctx context.Context, userID, productID string, quantity int) (int, error) {
	if err := parseID(productID, "product"); err != nil {
		return 0, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, mapLookupError(err, "user")
	}

	cart := append([]domain.CartItem{}, user.Cart...)
	idx := -1
	for i, item := range cart {
		if item.ProductID == productID {
			idx = i
			break
		}
	}

	if idx >= 0 {
		cart[idx].Quantity += quantity
		if cart[idx].Quantity <= 0 {
			cart = append(cart[:idx], cart[idx+1:]...)
		}
	} else {
		if quantity <= 0 {
			return 0, apperrors.NewValidationError("quantity must be at least 1", nil)
		}
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, apperrors.NewNotFound("product", nil)
			}
			return 0, apperrors.NewInternalError(err)
		}
		if !product.Sell {
			return 0, apperrors.NewBadRequest(apperrors.CodeDelistedItem, "product is not for sale")
		}
		cart = append(cart, domain.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.users.ReplaceCart(ctx, userID, cart); err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	user.Cart = cart
	return user.CartSize(), nil
}

// GetCart resolves every line against the live catalog.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	lines, err := s.users.CartLines(ctx, userID)
	if err != nil {
		return nil, mapLookupError(err, "user")
	}
	return lines, nil
}
