package service

import (
	"bytes"
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/events"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aaravmahajanofficial/storefront/internal/services")

// CheckoutService converts a cart into an order in a single transaction.
type CheckoutService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error)
}

type checkoutService struct {
	carts       repository.CartRepository
	orders      repository.OrderRepository
	tx          repository.Transactor
	rateLimiter repository.RateLimitRepository
	cache       cache.Cache
	publisher   events.Publisher
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	tx repository.Transactor,
	rateLimiter repository.RateLimitRepository,
	cache cache.Cache,
	publisher events.Publisher,
) CheckoutService {
	return &checkoutService{
		carts:       carts,
		orders:      orders,
		tx:          tx,
		rateLimiter: rateLimiter,
		cache:       cache,
		publisher:   publisher,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {

	start := time.Now()

	ctx, span := tracer.Start(ctx, "CheckoutService.Checkout",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	run := newCheckoutRun(middleware.LoggerFromContext(ctx), userID)

	order, outcome, err := s.checkout(ctx, run, userID, req)

	metrics.RecordCheckout(outcome, time.Since(start))
	span.SetAttributes(attribute.String("checkout.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", order.ID.String()))

	return order, nil
}

func (s *checkoutService) checkout(ctx context.Context, run *checkoutRun, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, string, error) {

	if appErr := s.checkRateLimit(ctx, run, userID); appErr != nil {
		run.abort("rate limited")
		return nil, metrics.OutcomeRateLimited, appErr
	}

	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err == nil {
			run.logger.Info("Checkout replayed", slog.String("orderID", existing.ID.String()))
			return existing, metrics.OutcomeReplayed, nil
		}
		if !stdErrors.Is(err, sql.ErrNoRows) {
			run.abort("idempotency lookup failed", slog.String("error", err.Error()))
			return nil, metrics.OutcomeTransient, transientCheckoutError(err)
		}
	}

	// an empty cart is rejected before any lock is taken
	cart, items, err := s.loadCart(ctx, userID)
	if err != nil {
		run.abort("cart unavailable", slog.String("error", err.Error()))
		return nil, outcomeFor(err), err
	}

	if err := run.transition(CheckoutValidating, slog.Int("lines", len(items))); err != nil {
		return nil, metrics.OutcomeTransient, errors.InternalError("Checkout failed").WithError(err)
	}

	var order *models.Order

	err = s.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
		// the lines read above may already belong to a concurrent checkout
		items, err := lockCartItems(ctx, repos.Carts, cart.ID)
		if err != nil {
			return err
		}

		products, err := lockProducts(ctx, repos.Products, items)
		if err != nil {
			return err
		}

		order = buildOrder(userID, req, items, products)

		if err := repos.Orders.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range order.Items {
			decremented, err := repos.Products.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !decremented {
				return stockShortfall(ctx, repos.Products, line.ProductID, line.Quantity)
			}
		}

		cleared, err := repos.Carts.ClearItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if cleared != int64(len(items)) {
			return fmt.Errorf("cart %s changed during checkout: cleared %d of %d lines", cart.ID, cleared, len(items))
		}

		return nil
	})

	if err != nil {
		return s.handleAbort(ctx, run, userID, req, err)
	}

	if err := run.transition(CheckoutCommitted,
		slog.String("orderID", order.ID.String()),
		slog.String("total", order.TotalAmount.StringFixed(2))); err != nil {
		return nil, metrics.OutcomeTransient, errors.InternalError("Checkout failed").WithError(err)
	}

	s.afterCommit(ctx, run.logger, order)

	return order, metrics.OutcomeCommitted, nil
}

// checkRateLimit fails open when redis cannot answer.
func (s *checkoutService) checkRateLimit(ctx context.Context, run *checkoutRun, userID uuid.UUID) *errors.AppError {

	if s.rateLimiter == nil {
		return nil
	}

	allowed, remaining, retryAfter, err := s.rateLimiter.CheckCheckoutRateLimit(ctx, userID)
	if err != nil {
		run.logger.Warn("Checkout rate limiter unavailable", slog.String("error", err.Error()))
		return nil
	}

	if !allowed {
		run.logger.Warn("Checkout rate limit exceeded", slog.Int("remaining", remaining), slog.Int("retryAfter", retryAfter))
		return errors.TooManyRequestsError("Too many checkout attempts, please try again later").
			WithMeta("retry_after", retryAfter)
	}

	return nil
}

func (s *checkoutService) loadCart(ctx context.Context, userID uuid.UUID) (*models.Cart, []models.CartItem, error) {

	cart, err := s.carts.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, nil, errors.EmptyCartError("Cart is empty")
		}
		return nil, nil, transientCheckoutError(err)
	}

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, nil, transientCheckoutError(err)
	}

	if len(items) == 0 {
		return nil, nil, errors.EmptyCartError("Cart is empty")
	}

	return cart, items, nil
}

// handleAbort runs after the transaction rolled back, so nothing was written.
func (s *checkoutService) handleAbort(ctx context.Context, run *checkoutRun, userID uuid.UUID, req *models.CheckoutRequest, err error) (*models.Order, string, error) {

	if stdErrors.Is(err, repository.ErrDuplicateIdempotencyKey) {
		run.abort("concurrent retry with the same idempotency key")

		winner, lookupErr := s.orders.GetOrderByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if lookupErr != nil {
			return nil, metrics.OutcomeTransient, transientCheckoutError(lookupErr)
		}

		return winner, metrics.OutcomeReplayed, nil
	}

	if appErr, ok := errors.IsAppError(err); ok {
		attrs := []any{slog.String("code", appErr.Code)}

		var shortfall *errors.StockShortfall
		if stdErrors.As(err, &shortfall) {
			attrs = append(attrs,
				slog.String("productID", shortfall.ProductID.String()),
				slog.Int("available", shortfall.Available),
				slog.Int("requested", shortfall.Requested))
		}

		run.abort(appErr.Message, attrs...)

		return nil, outcomeFor(appErr), appErr
	}

	run.abort("persistence failure", slog.String("error", err.Error()))

	return nil, metrics.OutcomeTransient, transientCheckoutError(err)
}

// afterCommit is best-effort: the order is already durable.
func (s *checkoutService) afterCommit(ctx context.Context, logger *slog.Logger, order *models.Order) {

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.OrderKey(order.ID), order, 0); err != nil {
			logger.Warn("Failed to cache order", slog.String("orderID", order.ID.String()), slog.String("error", err.Error()))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(order)); err != nil {
			logger.Error("Failed to publish order event", slog.String("orderID", order.ID.String()), slog.String("error", err.Error()))
		}
	}
}

// lockCartItems locks the cart row and re-reads its lines inside the
// transaction, in ascending product id so every checkout locks products in the
// same order.
func lockCartItems(ctx context.Context, carts repository.CartRepository, cartID uuid.UUID) ([]models.CartItem, error) {

	if err := carts.LockCart(ctx, cartID); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.EmptyCartError("Cart is empty")
		}
		return nil, err
	}

	items, err := carts.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, errors.EmptyCartError("Cart is empty")
	}

	slices.SortFunc(items, func(a, b models.CartItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	return items, nil
}

func lockProducts(ctx context.Context, products repository.ProductRepository, items []models.CartItem) ([]*models.Product, error) {

	locked := make([]*models.Product, 0, len(items))

	for _, item := range items {
		product, err := products.GetProductForUpdate(ctx, item.ProductID)
		if err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				return nil, errors.NotFoundError("Product not found").
					WithDetail("product " + item.ProductID.String() + " no longer exists").
					WithError(err)
			}
			return nil, err
		}

		if !product.CanFulfil(item.Quantity) {
			return nil, errors.InsufficientStockError(product.ID, availableStock(product), item.Quantity)
		}

		locked = append(locked, product)
	}

	return locked, nil
}

// stockShortfall re-reads the product after the guarded decrement matched no row.
func stockShortfall(ctx context.Context, products repository.ProductRepository, productID uuid.UUID, requested int) error {

	product, err := products.GetProductByID(ctx, productID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.InsufficientStockError(productID, 0, requested)
		}
		return err
	}

	return errors.InsufficientStockError(productID, availableStock(product), requested)
}

// availableStock reports zero for a product that can no longer be sold.
func availableStock(product *models.Product) int {
	if !product.Available {
		return 0
	}

	return product.Stock
}

// buildOrder freezes name and price from the locked product rows.
func buildOrder(userID uuid.UUID, req *models.CheckoutRequest, items []models.CartItem, products []*models.Product) *models.Order {

	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         models.OrderStatusPending,
		Shipping:       sanitizeShipping(req.Shipping),
		IdempotencyKey: req.IdempotencyKey,
		Items:          make([]models.OrderItem, 0, len(items)),
	}

	for i, item := range items {
		product := products[i]

		order.Items = append(order.Items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
		})
	}

	order.TotalAmount = order.ItemsTotal()

	return order
}

func sanitizeShipping(details models.ShippingDetails) models.ShippingDetails {
	return models.ShippingDetails{
		FirstName:  utils.SanitizeText(details.FirstName),
		LastName:   utils.SanitizeText(details.LastName),
		Email:      utils.SanitizeText(details.Email),
		Phone:      utils.SanitizeText(details.Phone),
		Address:    utils.SanitizeText(details.Address),
		City:       utils.SanitizeText(details.City),
		PostalCode: utils.SanitizeText(details.PostalCode),
		Country:    utils.SanitizeText(details.Country),
	}
}

func transientCheckoutError(err error) *errors.AppError {
	return errors.TransientError("Checkout could not be completed, please try again").WithError(err)
}

func outcomeFor(err error) string {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		return metrics.OutcomeTransient
	}

	switch appErr.Code {
	case errors.ErrCodeEmptyCart:
		return metrics.OutcomeEmptyCart
	case errors.ErrCodeInsufficientStock:
		return metrics.OutcomeInsufficientStock
	case errors.ErrCodeNotFound:
		return metrics.OutcomeNotFound
	case errors.ErrCodeTooManyRequests:
		return metrics.OutcomeRateLimited
	default:
		return metrics.OutcomeTransient
	}
}
