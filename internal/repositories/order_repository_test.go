package repository_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderCols     = []string{"id", "user_id", "status", "total_amount", "shipping", "idempotency_key", "created_at", "updated_at"}
	orderItemCols = []string{"id", "order_id", "product_id", "product_name", "unit_price", "quantity", "created_at"}
)

func setupOrderRepoTest(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)

	return repository.NewOrderRepo(db), mock
}

func testShipping() models.ShippingDetails {
	return models.ShippingDetails{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Address: "12 Analytical Way", City: "London", PostalCode: "N1 9GU", Country: "GB",
	}
}

func TestCreateOrder(t *testing.T) {
	// Arrange
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()

	now := time.Now()
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Status:         models.OrderStatusPending,
		TotalAmount:    decimal.RequireFromString("25.00"),
		Shipping:       testShipping(),
		IdempotencyKey: "key-1",
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "A", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
			{ID: uuid.New(), ProductID: uuid.New(), ProductName: "B", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
		},
	}

	shipping, err := json.Marshal(order.Shipping)
	require.NoError(t, err)

	orderInsert := regexp.QuoteMeta("INSERT INTO orders (id, user_id, status, total_amount, shipping, idempotency_key, created_at, updated_at)")
	itemInsert := regexp.QuoteMeta("INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, created_at)")

	t.Run("Success - Create Order", func(t *testing.T) {
		mock.ExpectQuery(orderInsert).
			WithArgs(order.ID, order.UserID, order.Status, order.TotalAmount, shipping, sql.NullString{String: "key-1", Valid: true}).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		for _, item := range order.Items {
			mock.ExpectExec(itemInsert).
				WithArgs(item.ID, order.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, now).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, now, order.CreatedAt)
		for _, item := range order.Items {
			assert.Equal(t, order.ID, item.OrderID)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate idempotency key", func(t *testing.T) {
		mock.ExpectQuery(orderInsert).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_user_idempotency_key"})

		err := repo.CreateOrder(ctx, order)

		assert.ErrorIs(t, err, repository.ErrDuplicateIdempotencyKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other unique violation is not an idempotency hit", func(t *testing.T) {
		mock.ExpectQuery(orderInsert).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_pkey"})

		err := repo.CreateOrder(ctx, order)

		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrDuplicateIdempotencyKey)
		assert.ErrorContains(t, err, "failed to insert order")
	})

	t.Run("Failure - Item Insert Error", func(t *testing.T) {
		dbErr := errors.New("DB error on item insert")
		mock.ExpectQuery(orderInsert).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(itemInsert).WillReturnError(dbErr)

		err := repo.CreateOrder(ctx, order)

		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to insert an order item")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty key stored as NULL", func(t *testing.T) {
		anon := *order
		anon.IdempotencyKey = ""
		anon.Items = nil

		mock.ExpectQuery(orderInsert).
			WithArgs(anon.ID, anon.UserID, anon.Status, anon.TotalAmount, shipping, nil).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		require.NoError(t, repo.CreateOrder(ctx, &anon))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrderByID(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()

	orderID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	shipping, err := json.Marshal(testShipping())
	require.NoError(t, err)

	orderQuery := regexp.QuoteMeta("FROM orders WHERE id = $1")
	itemsQuery := regexp.QuoteMeta("FROM order_items WHERE order_id = ANY($1::uuid[])")

	t.Run("Success - order with items", func(t *testing.T) {
		mock.ExpectQuery(orderQuery).WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(orderID.String(), userID.String(), "pending", "20.00", shipping, nil, now, now))
		mock.ExpectQuery(itemsQuery).WithArgs(pq.Array([]string{orderID.String()})).
			WillReturnRows(sqlmock.NewRows(orderItemCols).AddRow(uuid.NewString(), orderID.String(), productID.String(), "Mug", "10.00", 2, now))

		order, err := repo.GetOrderByID(ctx, orderID)

		require.NoError(t, err)
		assert.Equal(t, userID, order.UserID)
		assert.Equal(t, "Ada", order.Shipping.FirstName)
		assert.Empty(t, order.IdempotencyKey)
		require.Len(t, order.Items, 1)
		assert.True(t, order.TotalAmount.Equal(order.ItemsTotal()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(orderQuery).WithArgs(orderID).WillReturnError(sql.ErrNoRows)

		order, err := repo.GetOrderByID(ctx, orderID)

		assert.Nil(t, order)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Corrupt shipping JSON", func(t *testing.T) {
		mock.ExpectQuery(orderQuery).WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(orderID.String(), userID.String(), "pending", "20.00", []byte("{"), nil, now, now))

		_, err := repo.GetOrderByID(ctx, orderID)

		assert.ErrorContains(t, err, "failed to unmarshal shipping details")
	})
}

func TestGetOrderByIdempotencyKey(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	orderID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	shipping, err := json.Marshal(testShipping())
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE user_id = $1 AND idempotency_key = $2")).WithArgs(userID, "key-1").
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(orderID.String(), userID.String(), "pending", "0.00", shipping, "key-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).WillReturnRows(sqlmock.NewRows(orderItemCols))

	order, err := repo.GetOrderByIdempotencyKey(t.Context(), userID, "key-1")

	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, "key-1", order.IdempotencyKey)
	assert.Empty(t, order.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersByUser(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()

	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	now := time.Now()

	shipping, err := json.Marshal(testShipping())
	require.NoError(t, err)

	countQuery := regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE user_id = $1")
	listQuery := regexp.QuoteMeta("ORDER BY created_at DESC, id LIMIT $2 OFFSET $3")

	t.Run("Success - counts only the user's orders", func(t *testing.T) {
		mock.ExpectQuery(countQuery).WithArgs(userID).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery(listQuery).WithArgs(userID, 10, 10).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(first.String(), userID.String(), "pending", "10.00", shipping, nil, now, now).
				AddRow(second.String(), userID.String(), "pending", "5.00", shipping, nil, now.Add(-time.Hour), now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
			WithArgs(pq.Array([]string{first.String(), second.String()})).
			WillReturnRows(sqlmock.NewRows(orderItemCols).
				AddRow(uuid.NewString(), first.String(), uuid.NewString(), "A", "10.00", 1, now).
				AddRow(uuid.NewString(), second.String(), uuid.NewString(), "B", "5.00", 1, now))

		orders, total, err := repo.ListOrdersByUser(ctx, userID, 2, 10)

		require.NoError(t, err)
		assert.Equal(t, 12, total)
		require.Len(t, orders, 2)
		assert.Equal(t, first, orders[0].ID)
		assert.Len(t, orders[0].Items, 1)
		assert.Len(t, orders[1].Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No orders skips the item query", func(t *testing.T) {
		mock.ExpectQuery(countQuery).WithArgs(userID).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(listQuery).WithArgs(userID, 10, 0).WillReturnRows(sqlmock.NewRows(orderCols))

		orders, total, err := repo.ListOrdersByUser(ctx, userID, 1, 10)

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
