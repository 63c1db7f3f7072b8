package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ProductRepository is a mock type for the ProductRepository type
type ProductRepository struct {
	mock.Mock
}

func (_m *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

func (_m *ProductRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

func (_m *ProductRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	ret := _m.Called(ctx, slug)

	var r0 *models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Product)
	}

	return r0, ret.Error(1)
}

func (_m *ProductRepository) ListProducts(ctx context.Context, categoryID uuid.NullUUID, page int, size int) ([]*models.Product, int, error) {
	ret := _m.Called(ctx, categoryID, page, size)

	var r0 []*models.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Product)
	}

	return r0, ret.Int(1), ret.Error(2)
}

func (_m *ProductRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	ret := _m.Called(ctx, slug)

	var r0 *models.Category
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Category)
	}

	return r0, ret.Error(1)
}

func (_m *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	ret := _m.Called(ctx, id, qty)

	return ret.Bool(0), ret.Error(1)
}

// NewProductRepository creates a new instance of ProductRepository. It also registers a cleanup function to assert the mocks expectations.
func NewProductRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProductRepository {
	m := &ProductRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
