package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// OrderRepository persists orders. Orders are append-only.
type OrderRepository interface {
	// CreateAndClearCart inserts the order with its items and removes the
	// ordered products from the owner's cart in the same transaction.
	CreateAndClearCart(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

type orderRepository struct {
	pool DB
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool DB) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) CreateAndClearCart(ctx context.Context, order *domain.Order) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrder = `
            INSERT INTO orders (number, user_id)
            VALUES ($1,$2)
            RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insertOrder, order.Number, order.UserID).
			Scan(&order.ID, &order.CreatedAt); err != nil {
			return mapWriteError(err)
		}

		productIDs := make([]string, len(order.Items))
		for i, item := range order.Items {
			if _, err := tx.Exec(ctx, `
                INSERT INTO order_items (order_id, position, product_id, quantity)
                VALUES ($1,$2,$3,$4)`,
				order.ID, i, item.ProductID, item.Quantity,
			); err != nil {
				return err
			}
			productIDs[i] = item.ProductID
		}

		// Lines added after the cart was read stay in the cart.
		_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND product_id = ANY($2)`, order.UserID, productIDs)
		return err
	})
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, "WHERE o.user_id=$1", userID)
}

func (r *orderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, "")
}

func (r *orderRepository) list(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	query := `
        SELECT o.id, o.number, o.user_id, u.account, o.created_at
        FROM orders o
        JOIN users u ON u.id = o.user_id
        ` + where + `
        ORDER BY o.created_at DESC, o.id ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	orders := []domain.Order{}
	index := map[string]int{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Number, &order.UserID, &order.UserAccount, &order.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		index[order.ID] = len(orders)
		orders = append(orders, order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	const itemsQuery = `
        SELECT i.order_id, i.product_id, i.quantity,
               p.id, p.name, p.price, p.image, p.description, p.category, p.sell, p.created_at, p.updated_at
        FROM order_items i
        LEFT JOIN products p ON p.id = i.product_id
        WHERE i.order_id = ANY($1)
        ORDER BY i.order_id, i.position ASC`
	itemRows, err := r.pool.Query(ctx, itemsQuery, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		var p nullableProduct
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Quantity,
			&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.Category, &p.Sell, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Product = p.toDomain()
		pos, ok := index[orderID]
		if !ok {
			continue
		}
		orders[pos].Items = append(orders[pos].Items, item)
	}
	return orders, itemRows.Err()
}
