package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

// CartService owns the per-user cart. Every mutation returns the cart as it
// reads after the change.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	return s.loadItems(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {

	if quantity == 0 {
		quantity = 1
	}

	if quantity < 0 {
		return nil, errors.BadRequestError("Quantity must be positive")
	}

	if quantity > models.MaxLineQuantity {
		return nil, quantityLimitError()
	}

	if err := s.ensurePurchasable(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	if err := s.carts.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		if stdErrors.Is(err, repository.ErrQuantityLimit) {
			return nil, quantityLimitError().WithError(err)
		}
		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("Item added to cart",
		slog.String("cartID", cart.ID.String()),
		slog.String("productID", productID.String()),
		slog.Int("quantity", quantity))

	return s.loadItems(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	removed, err := s.carts.RemoveItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to remove item from cart").WithError(err)
	}

	if !removed {
		return nil, errors.NotFoundError("Item not found in the cart")
	}

	return s.loadItems(ctx, cart)
}

// SetQuantity with a quantity of zero or less removes the line.
func (s *cartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {

	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	if quantity > models.MaxLineQuantity {
		return nil, quantityLimitError()
	}

	if err := s.ensurePurchasable(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	if err := s.carts.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if stdErrors.Is(err, repository.ErrQuantityLimit) {
			return nil, quantityLimitError().WithError(err)
		}
		return nil, errors.DatabaseError("Failed to update cart").WithError(err)
	}

	return s.loadItems(ctx, cart)
}

// a merged line above the cap is reported the same way as a request above it
func quantityLimitError() *errors.AppError {
	return errors.AddValidationError("quantity", fmt.Sprintf("must be at most %d", models.MaxLineQuantity))
}

func (s *cartService) ensurePurchasable(ctx context.Context, productID uuid.UUID) error {

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Product not found").WithError(err)
		}
		return errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if !product.Purchasable() {
		return errors.UnavailableError("Product is not available")
	}

	return nil
}

func (s *cartService) loadItems(ctx context.Context, cart *models.Cart) (*models.Cart, error) {

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart items").WithError(err)
	}

	cart.Items = items

	return cart, nil
}
