package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// CartRepository is a mock type for the CartRepository type
type CartRepository struct {
	mock.Mock
}

func (_m *CartRepository) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}

	return r0, ret.Error(1)
}

func (_m *CartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}

	return r0, ret.Error(1)
}

func (_m *CartRepository) LockCart(ctx context.Context, cartID uuid.UUID) error {
	ret := _m.Called(ctx, cartID)

	return ret.Error(0)
}

func (_m *CartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	ret := _m.Called(ctx, cartID)

	var r0 []models.CartItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.CartItem)
	}

	return r0, ret.Error(1)
}

func (_m *CartRepository) AddItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, qty int) error {
	ret := _m.Called(ctx, cartID, productID, qty)

	return ret.Error(0)
}

func (_m *CartRepository) SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, qty int) error {
	ret := _m.Called(ctx, cartID, productID, qty)

	return ret.Error(0)
}

func (_m *CartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, cartID, productID)

	return ret.Bool(0), ret.Error(1)
}

func (_m *CartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, cartID)

	return ret.Get(0).(int64), ret.Error(1)
}

// NewCartRepository creates a new instance of CartRepository. It also registers a cleanup function to assert the mocks expectations.
func NewCartRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartRepository {
	m := &CartRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
