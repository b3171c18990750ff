package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// ProductRepository encapsulates product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, int, error)
}

const productColumns = `id, name, price, image, description, category, sell, created_at, updated_at`

var productListSpec = listSpec{
	table:      "products",
	columns:    productColumns,
	searchable: []string{"name", "description"},
	sortable: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"price":     "price",
	},
	hasSell: true,
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, price, image, description, category, sell)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.Image,
		product.Description,
		product.Category,
		product.Sell,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return mapWriteError(err)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, price=$2, image=$3, description=$4, category=$5, sell=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.Image,
		product.Description,
		product.Category,
		product.Sell,
		product.ID,
	).Scan(&product.UpdatedAt)
	return mapWriteError(err)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanProduct(row)
}

func (r *productRepository) List(ctx context.Context, filter ListFilter) ([]domain.Product, int, error) {
	query, countQuery, args := buildListQuery(productListSpec, filter)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *product)
	}
	return products, total, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Image,
		&product.Description,
		&product.Category,
		&product.Sell,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

// nullableProduct receives the right side of a LEFT JOIN on products.
type nullableProduct struct {
	ID          *string
	Name        *string
	Price       *int
	Image       *string
	Description *string
	Category    *string
	Sell        *bool
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

func (p nullableProduct) toDomain() *domain.Product {
	if p.ID == nil {
		return nil
	}
	product := &domain.Product{ID: *p.ID}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Category != nil {
		product.Category = domain.ProductCategory(*p.Category)
	}
	if p.Sell != nil {
		product.Sell = *p.Sell
	}
	if p.CreatedAt != nil {
		product.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		product.UpdatedAt = *p.UpdatedAt
	}
	return product
}
