package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ProductService is a mock type for the ProductService type
type ProductService struct {
	mock.Mock
}

func (_m *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

func (_m *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	ret := _m.Called(ctx, slug)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

func (_m *ProductService) ListProducts(ctx context.Context, categorySlug string, page int, pageSize int) ([]*models.Product, int, error) {
	ret := _m.Called(ctx, categorySlug, page, pageSize)

	var r0 []*models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Product)
	}

	return r0, ret.Int(1), ret.Error(2)
}

// CartService is a mock type for the CartService type
type CartService struct {
	mock.Mock
}

func (_m *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}

	return r0, ret.Error(1)
}

func (_m *CartService) AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	ret := _m.Called(ctx, userID, productID, quantity)

	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}

	return r0, ret.Error(1)
}

func (_m *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {
	ret := _m.Called(ctx, userID, productID)

	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}

	return r0, ret.Error(1)
}

func (_m *CartService) SetQuantity(ctx context.Context, userID uuid.UUID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	ret := _m.Called(ctx, userID, productID, quantity)

	var r0 *models.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Cart)
	}

	return r0, ret.Error(1)
}

// CheckoutService is a mock type for the CheckoutService type
type CheckoutService struct {
	mock.Mock
}

func (_m *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {
	ret := _m.Called(ctx, userID, req)

	var r0 *models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Order)
	}

	return r0, ret.Error(1)
}

// OrderService is a mock type for the OrderService type
type OrderService struct {
	mock.Mock
}

func (_m *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) (*models.Order, error) {
	ret := _m.Called(ctx, orderID, userID)

	var r0 *models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Order)
	}

	return r0, ret.Error(1)
}

func (_m *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page int, pageSize int) ([]models.Order, int, error) {
	ret := _m.Called(ctx, userID, page, pageSize)

	var r0 []models.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Order)
	}

	return r0, ret.Int(1), ret.Error(2)
}
