package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "category_id", "name", "slug", "description", "price", "stock", "available", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return db, mock
}

func setupProductRepoTest(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)

	return repository.NewProductRepo(db), mock
}

func TestGetProductByID(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	productID := uuid.New()
	now := time.Now()
	query := regexp.QuoteMeta("FROM products p WHERE p.id = $1")

	t.Run("Success", func(t *testing.T) {
		// Arrange
		rows := sqlmock.NewRows(productCols).
			AddRow(productID.String(), nil, "Mug", "mug", "Blue mug", "12.50", 7, true, now, now)
		mock.ExpectQuery(query).WithArgs(productID).WillReturnRows(rows)

		// Act
		product, err := repo.GetProductByID(ctx, productID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		assert.False(t, product.CategoryID.Valid)
		assert.True(t, decimal.RequireFromString("12.50").Equal(product.Price))
		assert.Equal(t, 7, product.Stock)
		assert.True(t, product.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found wraps sql.ErrNoRows", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(productID).WillReturnError(sql.ErrNoRows)

		product, err := repo.GetProductByID(ctx, productID)

		require.Error(t, err)
		assert.Nil(t, product)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetProductForUpdate(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	productID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(productCols).
		AddRow(productID.String(), nil, "Mug", "mug", "", "3.00", 1, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1 FOR UPDATE")).WithArgs(productID).WillReturnRows(rows)

	product, err := repo.GetProductForUpdate(t.Context(), productID)

	require.NoError(t, err)
	assert.Equal(t, 1, product.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductBySlug(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()

	productID := uuid.New()
	categoryID := uuid.New()
	now := time.Now()
	query := regexp.QuoteMeta("WHERE p.slug = $1")
	cols := append(append([]string{}, productCols...), "c_id", "c_name", "c_slug")

	t.Run("With category", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).
			AddRow(productID.String(), categoryID.String(), "Mug", "mug", "", "12.50", 7, true, now, now, categoryID.String(), "Kitchen", "kitchen")
		mock.ExpectQuery(query).WithArgs("mug").WillReturnRows(rows)

		product, err := repo.GetProductBySlug(ctx, "mug")

		require.NoError(t, err)
		assert.True(t, product.CategoryID.Valid)
		require.NotNil(t, product.Category)
		assert.Equal(t, "kitchen", product.Category.Slug)
	})

	t.Run("Without category", func(t *testing.T) {
		rows := sqlmock.NewRows(cols).
			AddRow(productID.String(), nil, "Mug", "mug", "", "12.50", 7, true, now, now, nil, nil, nil)
		mock.ExpectQuery(query).WithArgs("mug").WillReturnRows(rows)

		product, err := repo.GetProductBySlug(ctx, "mug")

		require.NoError(t, err)
		assert.Nil(t, product.Category)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetProductBySlug(ctx, "ghost")

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()
	now := time.Now()

	countQuery := regexp.QuoteMeta("SELECT COUNT(*) FROM products p WHERE p.available = TRUE")
	listQuery := regexp.QuoteMeta("ORDER BY p.name, p.id")

	t.Run("Success - first page", func(t *testing.T) {
		// Arrange
		noCategory := uuid.NullUUID{}
		mock.ExpectQuery(countQuery).WithArgs(noCategory).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		rows := sqlmock.NewRows(productCols).
			AddRow(uuid.NewString(), nil, "A", "a", "", "1.00", 1, true, now, now).
			AddRow(uuid.NewString(), nil, "B", "b", "", "2.00", 2, true, now, now)
		mock.ExpectQuery(listQuery).WithArgs(noCategory, 2, 0).WillReturnRows(rows)

		// Act
		products, total, err := repo.ListProducts(ctx, noCategory, 1, 2)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, products, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Category filter and offset", func(t *testing.T) {
		category := uuid.NullUUID{UUID: uuid.New(), Valid: true}
		mock.ExpectQuery(countQuery).WithArgs(category).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(listQuery).WithArgs(category, 10, 10).WillReturnRows(sqlmock.NewRows(productCols))

		products, total, err := repo.ListProducts(ctx, category, 2, 10)

		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Count error", func(t *testing.T) {
		dbErr := errors.New("count failed")
		mock.ExpectQuery(countQuery).WillReturnError(dbErr)

		_, _, err := repo.ListProducts(ctx, uuid.NullUUID{}, 1, 10)

		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetCategoryBySlug(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	categoryID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, slug FROM categories WHERE slug = $1")).
		WithArgs("kitchen").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(categoryID.String(), "Kitchen", "kitchen"))

	category, err := repo.GetCategoryBySlug(t.Context(), "kitchen")

	require.NoError(t, err)
	assert.Equal(t, categoryID, category.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	ctx := t.Context()
	productID := uuid.New()
	query := regexp.QuoteMeta("UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND available = TRUE AND stock >= $1")

	t.Run("Guard passes", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(2, productID).WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.DecrementStock(ctx, productID, 2)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Guard rejects", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(5, productID).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.DecrementStock(ctx, productID, 5)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Driver error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectExec(query).WithArgs(1, productID).WillReturnError(dbErr)

		ok, err := repo.DecrementStock(ctx, productID, 1)

		assert.False(t, ok)
		assert.ErrorIs(t, err, dbErr)
		assert.ErrorContains(t, err, "failed to decrement stock")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
