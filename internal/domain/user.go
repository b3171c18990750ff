package domain

import "time"

// Role is the single authorization attribute carried by a user.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// CartItem is one line of a user's cart.
type CartItem struct {
	ProductID string
	Quantity  int
}

// User is the storefront account. Sessions live in the token registry.
type User struct {
	ID           string
	Account      string
	PasswordHash string
	Role         Role
	Cart         []CartItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	return u != nil && u.Role == role
}

// CartSize sums the quantities in the cart.
func (u *User) CartSize() int {
	total := 0
	for _, item := range u.Cart {
		total += item.Quantity
	}
	return total
}
