package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation        = "23505"
	idempotencyKeyConstraint = "orders_user_idempotency_key"
)

// ErrDuplicateIdempotencyKey is returned by CreateOrder when the user already
// placed an order under the same idempotency key.
var ErrDuplicateIdempotencyKey = errors.New("order with this idempotency key already exists")

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
}

type orderRepository struct {
	DB DBTX
}

func NewOrderRepo(db DBTX) OrderRepository {
	return &orderRepository{DB: db}
}

func nullableKey(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	shipping, err := json.Marshal(order.Shipping)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping details: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, status, total_amount, shipping, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`

	err = r.DB.QueryRowContext(dbCtx, query, order.ID, order.UserID, order.Status, order.TotalAmount, shipping, nullableKey(order.IdempotencyKey)).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == idempotencyKeyConstraint {
			return ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		item.CreatedAt = order.CreatedAt

		_, err := r.DB.ExecContext(dbCtx, itemQuery, item.ID, order.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, user_id, status, total_amount, shipping, idempotency_key, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}

	var (
		shipping []byte
		key      sql.NullString
	)

	if err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount, &shipping, &key, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(shipping, &order.Shipping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping details: %w", err)
	}

	order.IdempotencyKey = key.String

	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := r.attachItems(dbCtx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) GetOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND idempotency_key = $2`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, userID, key))
	if err != nil {
		return nil, fmt.Errorf("failed to get the order by idempotency key: %w", err)
	}

	if err := r.attachItems(dbCtx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrdersByUser returns the user's orders newest first, together with the
// user's total order count.
func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var ptrs []*models.Order

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		ptrs = append(ptrs, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(dbCtx, ptrs); err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0, len(ptrs))
	for _, order := range ptrs {
		orders = append(orders, *order)
	}

	return orders, total, nil
}

// attachItems loads the items of all given orders in one round trip.
func (r *orderRepository) attachItems(ctx context.Context, orders []*models.Order) error {

	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*models.Order, len(orders))

	for _, order := range orders {
		order.Items = []models.OrderItem{}
		ids = append(ids, order.ID.String())
		byID[order.ID] = order
	}

	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, product_id`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get the order items: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem

		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity, &item.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}
