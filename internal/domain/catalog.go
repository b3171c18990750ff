package domain

import "time"

// ProductCategory enumerates product shelves.
type ProductCategory string

const (
	ProductCategoryClothing ProductCategory = "clothing"
	ProductCategoryPhone    ProductCategory = "phone"
	ProductCategoryGame     ProductCategory = "game"
	ProductCategoryFood     ProductCategory = "food"
)

// ProductCategories lists every accepted product category.
var ProductCategories = []ProductCategory{
	ProductCategoryClothing,
	ProductCategoryPhone,
	ProductCategoryGame,
	ProductCategoryFood,
}

// ServiceCategory enumerates service offerings.
type ServiceCategory string

const (
	ServiceCategoryPromotion           ServiceCategory = "promotion"
	ServiceCategoryIndividualCremation ServiceCategory = "individual_cremation"
	ServiceCategoryGroupCremation      ServiceCategory = "group_cremation"
)

// ServiceCategories lists every accepted service category.
var ServiceCategories = []ServiceCategory{
	ServiceCategoryPromotion,
	ServiceCategoryIndividualCremation,
	ServiceCategoryGroupCremation,
}

// Product is a sellable item referenced by carts and orders.
type Product struct {
	ID          string
	Name        string
	Price       int
	Image       string
	Description string
	Category    ProductCategory
	Sell        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ServiceItem is a bookable service listed next to products.
type ServiceItem struct {
	ID          string
	Name        string
	Price       int
	Image       string
	Description string
	Category    ServiceCategory
	Sell        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OnlineWorship is a memorial entry published by members.
type OnlineWorship struct {
	ID          string
	Image       string
	Name        string
	Date        *time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CartLine is a cart item resolved against the current catalog.
// Product is nil when the referenced product no longer exists.
type CartLine struct {
	ProductID string
	Quantity  int
	Product   *Product
}

// Listed reports whether the line can still be purchased.
func (l CartLine) Listed() bool {
	return l.Product != nil && l.Product.Sell
}
