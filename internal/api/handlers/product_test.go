package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupProductTest() (*mocks.ProductService, *handlers.ProductHandler) {
	mockProductService := new(mocks.ProductService)
	return mockProductService, handlers.NewProductHandler(mockProductService)
}

func TestGetProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		product := &models.Product{ID: uuid.New(), Slug: "blue-mug", Name: "Blue Mug", Price: decimal.RequireFromString("8.00"), Available: true}
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products/blue-mug", nil, map[string]string{"slug": "blue-mug"})
		rr := httptest.NewRecorder()
		mockProductService.On("GetProductBySlug", mock.Anything, "blue-mug").Return(product, nil).Once()

		// Act
		productHandler.GetProduct()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		resp := testutils.DecodeResponse(t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, "Blue Mug", resp.Data.(map[string]any)["name"])
		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		mockProductService, productHandler := setupProductTest()
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products/none", nil, map[string]string{"slug": "none"})
		rr := httptest.NewRecorder()
		mockProductService.On("GetProductBySlug", mock.Anything, "none").Return(nil, appErrors.NotFoundError("Product not found")).Once()

		productHandler.GetProduct()(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		resp := testutils.DecodeResponse(t, rr)
		assert.Equal(t, appErrors.ErrCodeNotFound, resp.Error.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Slug", func(t *testing.T) {
		_, productHandler := setupProductTest()
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products/", nil, nil)
		rr := httptest.NewRecorder()

		productHandler.GetProduct()(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListProducts(t *testing.T) {
	t.Run("Success - Category And Pagination", func(t *testing.T) {
		// Arrange
		mockProductService, productHandler := setupProductTest()
		products := []*models.Product{{ID: uuid.New()}, {ID: uuid.New()}}
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products?category=kitchen&page=2&pageSize=2", nil, nil)
		rr := httptest.NewRecorder()
		mockProductService.On("ListProducts", mock.Anything, "kitchen", 2, 2).Return(products, 5, nil).Once()

		// Act
		productHandler.ListProducts()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		resp := testutils.DecodeResponse(t, rr)
		data := resp.Data.(map[string]any)
		assert.EqualValues(t, 5, data["total"])
		assert.EqualValues(t, 3, data["totalPages"])
		assert.Len(t, data["data"], 2)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Defaults For Invalid Pagination", func(t *testing.T) {
		mockProductService, productHandler := setupProductTest()
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products?page=abc&pageSize=1000", nil, nil)
		rr := httptest.NewRecorder()
		mockProductService.On("ListProducts", mock.Anything, "", 1, models.MaxPageSize).Return([]*models.Product{}, 0, nil).Once()

		productHandler.ListProducts()(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockProductService.AssertExpectations(t)
	})

	t.Run("Failure - Service Error", func(t *testing.T) {
		mockProductService, productHandler := setupProductTest()
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/products", nil, nil)
		rr := httptest.NewRecorder()
		mockProductService.On("ListProducts", mock.Anything, "", 1, models.DefaultPageSize).
			Return(nil, 0, appErrors.DatabaseError("Failed to fetch products").WithError(errors.New("timeout"))).Once()

		productHandler.ListProducts()(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockProductService.AssertExpectations(t)
	})
}
