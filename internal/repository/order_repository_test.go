package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

const (
	insertOrderSQL     = `INSERT INTO orders`
	insertOrderItemSQL = `INSERT INTO order_items`
	clearCartSQL       = `DELETE FROM cart_items WHERE user_id=$1 AND product_id = ANY($2)`
)

func pendingOrder() *domain.Order {
	return &domain.Order{
		Number: "ORD-01HX",
		UserID: "user-1",
		Items: []domain.OrderItem{
			{ProductID: "p-1", Quantity: 2},
			{ProductID: "p-2", Quantity: 1},
		},
	}
}

func TestCreateAndClearCartCommitsOrderThenCart(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrderRepository(mock)
	created := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	order := pendingOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(insertOrderSQL).
		WithArgs("ORD-01HX", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("order-1", created))
	mock.ExpectExec(insertOrderItemSQL).
		WithArgs("order-1", 0, "p-1", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertOrderItemSQL).
		WithArgs("order-1", 1, "p-2", 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(clearCartSQL)).
		WithArgs("user-1", []string{"p-1", "p-2"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateAndClearCart(context.Background(), order))
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, created, order.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAndClearCartRollsBackWhenItemInsertFails(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(insertOrderSQL).
		WithArgs("ORD-01HX", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("order-1", time.Now()))
	mock.ExpectExec(insertOrderItemSQL).
		WithArgs("order-1", 0, "p-1", 2).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	err := repo.CreateAndClearCart(context.Background(), pendingOrder())
	require.Error(t, err)
	// The cart delete never ran.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAndClearCartRollsBackWhenOrderInsertFails(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(insertOrderSQL).
		WithArgs("ORD-01HX", "user-1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	require.Error(t, repo.CreateAndClearCart(context.Background(), pendingOrder()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
