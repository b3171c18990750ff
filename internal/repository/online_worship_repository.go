package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// OnlineWorshipRepository encapsulates memorial entry persistence.
type OnlineWorshipRepository interface {
	Create(ctx context.Context, entry *domain.OnlineWorship) error
	Update(ctx context.Context, entry *domain.OnlineWorship) error
	GetByID(ctx context.Context, id string) (*domain.OnlineWorship, error)
	List(ctx context.Context, filter ListFilter) ([]domain.OnlineWorship, int, error)
}

const worshipColumns = `id, image, name, date, description, created_at, updated_at`

var worshipListSpec = listSpec{
	table:      "online_worships",
	columns:    worshipColumns,
	searchable: []string{"name", "description"},
	sortable: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"date":      "date",
	},
}

type onlineWorshipRepository struct {
	pool *pgxpool.Pool
}

func NewOnlineWorshipRepository(pool *pgxpool.Pool) OnlineWorshipRepository {
	return &onlineWorshipRepository{pool: pool}
}

func (r *onlineWorshipRepository) Create(ctx context.Context, entry *domain.OnlineWorship) error {
	const query = `
        INSERT INTO online_worships (image, name, date, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.Image,
		entry.Name,
		entry.Date,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *onlineWorshipRepository) Update(ctx context.Context, entry *domain.OnlineWorship) error {
	const query = `
        UPDATE online_worships SET image=$1, name=$2, date=$3, description=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.Image,
		entry.Name,
		entry.Date,
		entry.Description,
		entry.ID,
	).Scan(&entry.UpdatedAt)
}

func (r *onlineWorshipRepository) GetByID(ctx context.Context, id string) (*domain.OnlineWorship, error) {
	query := `SELECT ` + worshipColumns + ` FROM online_worships WHERE id=$1`
	return scanWorship(r.pool.QueryRow(ctx, query, id))
}

func (r *onlineWorshipRepository) List(ctx context.Context, filter ListFilter) ([]domain.OnlineWorship, int, error) {
	query, countQuery, args := buildListQuery(worshipListSpec, filter)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []domain.OnlineWorship{}
	for rows.Next() {
		entry, err := scanWorship(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}
	return entries, total, rows.Err()
}

func scanWorship(row pgx.Row) (*domain.OnlineWorship, error) {
	var entry domain.OnlineWorship
	if err := row.Scan(
		&entry.ID,
		&entry.Image,
		&entry.Name,
		&entry.Date,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
