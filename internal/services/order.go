package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

// OrderService reads the order ledger. Orders are immutable once placed, so
// snapshots are served from the cache when present.
type OrderService interface {
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int, error)
}

type orderService struct {
	repo  repository.OrderRepository
	cache cache.Cache
}

func NewOrderService(repo repository.OrderRepository, cache cache.Cache) OrderService {
	return &orderService{repo: repo, cache: cache}
}

// GetOrder answers NotFound for another user's order as well as a missing one.
func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)
	key := cache.OrderKey(orderID)

	if s.cache != nil {
		var cached models.Order

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Order cache read failed", slog.String("orderID", orderID.String()), slog.String("error", err.Error()))
		}

		if found {
			if cached.UserID != userID {
				return nil, errors.NotFoundError("Order not found")
			}
			return &cached, nil
		}
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Order not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.UserID != userID {
		logger.Warn("Order requested by a different user", slog.String("orderID", orderID.String()))
		return nil, errors.NotFoundError("Order not found")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, order, 0); err != nil {
			logger.Warn("Failed to cache order", slog.String("orderID", orderID.String()), slog.String("error", err.Error()))
		}
	}

	return order, nil
}

// ListOrders returns the user's orders, newest first, with the total count.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int, error) {

	page, pageSize = models.NormalizePage(page, pageSize)

	orders, total, err := s.repo.ListOrdersByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}
