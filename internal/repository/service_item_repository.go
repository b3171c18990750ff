package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// ServiceItemRepository encapsulates persistence for bookable services.
type ServiceItemRepository interface {
	Create(ctx context.Context, item *domain.ServiceItem) error
	Update(ctx context.Context, item *domain.ServiceItem) error
	GetByID(ctx context.Context, id string) (*domain.ServiceItem, error)
	List(ctx context.Context, filter ListFilter) ([]domain.ServiceItem, int, error)
}

const serviceColumns = `id, name, price, image, description, category, sell, created_at, updated_at`

var serviceListSpec = listSpec{
	table:      "services",
	columns:    serviceColumns,
	searchable: []string{"name", "description"},
	sortable: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"price":     "price",
	},
	hasSell: true,
}

type serviceItemRepository struct {
	pool *pgxpool.Pool
}

func NewServiceItemRepository(pool *pgxpool.Pool) ServiceItemRepository {
	return &serviceItemRepository{pool: pool}
}

func (r *serviceItemRepository) Create(ctx context.Context, item *domain.ServiceItem) error {
	const query = `
        INSERT INTO services (name, price, image, description, category, sell)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		item.Name,
		item.Price,
		item.Image,
		item.Description,
		item.Category,
		item.Sell,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return mapWriteError(err)
}

func (r *serviceItemRepository) Update(ctx context.Context, item *domain.ServiceItem) error {
	const query = `
        UPDATE services SET name=$1, price=$2, image=$3, description=$4, category=$5, sell=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		item.Name,
		item.Price,
		item.Image,
		item.Description,
		item.Category,
		item.Sell,
		item.ID,
	).Scan(&item.UpdatedAt)
	return mapWriteError(err)
}

func (r *serviceItemRepository) GetByID(ctx context.Context, id string) (*domain.ServiceItem, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id=$1`
	return scanServiceItem(r.pool.QueryRow(ctx, query, id))
}

func (r *serviceItemRepository) List(ctx context.Context, filter ListFilter) ([]domain.ServiceItem, int, error) {
	query, countQuery, args := buildListQuery(serviceListSpec, filter)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []domain.ServiceItem{}
	for rows.Next() {
		item, err := scanServiceItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

func scanServiceItem(row pgx.Row) (*domain.ServiceItem, error) {
	var item domain.ServiceItem
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Price,
		&item.Image,
		&item.Description,
		&item.Category,
		&item.Sell,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
