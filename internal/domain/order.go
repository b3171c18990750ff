package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// OrderItem is an immutable cart line captured at purchase time.
type OrderItem struct {
	ProductID string   `json:"product"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"-"`
}

// Validate requires a product and a quantity of at least one.
func (i OrderItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ProductID, validation.Required.Error("order item product is required")),
		validation.Field(&i.Quantity,
			validation.Required.Error("order item quantity must be at least 1"),
			validation.Min(1).Error("order item quantity must be at least 1"),
		),
	)
}

// Order snapshots a cart at the moment of purchase and is never mutated.
type Order struct {
	ID          string      `json:"id"`
	Number      string      `json:"number"`
	UserID      string      `json:"user"`
	UserAccount string      `json:"-"`
	Items       []OrderItem `json:"cart"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Validate enforces the order invariants before persistence. Items are
// checked one by one through OrderItem.Validate.
func (o *Order) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.UserID, validation.Required.Error("order user is required")),
		validation.Field(&o.Items, validation.Required.Error("order cart is required")),
	)
}
