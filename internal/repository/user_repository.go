package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// UserRepository defines persistence access for storefront accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByAccount(ctx context.Context, account string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ReplaceCart(ctx context.Context, userID string, items []domain.CartItem) error
	CartLines(ctx context.Context, userID string) ([]domain.CartLine, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (account, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Account,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapWriteError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, account, password_hash, role, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchWithCart(ctx, query, id)
}

func (r *userRepository) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	const query = `
        SELECT id, account, password_hash, role, created_at, updated_at
        FROM users WHERE account=$1`
	return r.fetchWithCart(ctx, query, account)
}

func (r *userRepository) fetchWithCart(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Account,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	const cartQuery = `
        SELECT product_id, quantity FROM cart_items
        WHERE user_id=$1 ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, cartQuery, user.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	user.Cart = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		user.Cart = append(user.Cart, item)
	}
	return &user, rows.Err()
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE users SET password_hash=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReplaceCart rewrites the whole cart in one transaction, keeping line order.
func (r *userRepository) ReplaceCart(ctx context.Context, userID string, items []domain.CartItem) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID); err != nil {
			return err
		}
		for i, item := range items {
			if _, err := tx.Exec(ctx, `
                INSERT INTO cart_items (user_id, position, product_id, quantity)
                VALUES ($1,$2,$3,$4)`,
				userID, i, item.ProductID, item.Quantity,
			); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `UPDATE users SET updated_at=NOW() WHERE id=$1`, userID)
		return err
	})
}

// CartLines resolves each cart line against the live products table.
func (r *userRepository) CartLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const query = `
        SELECT c.product_id, c.quantity,
               p.id, p.name, p.price, p.image, p.description, p.category, p.sell, p.created_at, p.updated_at
        FROM cart_items c
        LEFT JOIN products p ON p.id = c.product_id
        WHERE c.user_id=$1
        ORDER BY c.position ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		var p nullableProduct
		if err := rows.Scan(&line.ProductID, &line.Quantity,
			&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.Category, &p.Sell, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		line.Product = p.toDomain()
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
