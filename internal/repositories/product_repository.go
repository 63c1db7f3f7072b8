package repository

import (
	"context"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type ProductRepository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, categoryID uuid.NullUUID, page, size int) ([]*models.Product, int, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

type productRepository struct {
	DB DBTX
}

func NewProductRepo(db DBTX) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `p.id, p.category_id, p.name, p.slug, p.description, p.price, p.stock, p.available, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}

	err := row.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Slug, &product.Description, &product.Price, &product.Stock, &product.Available, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetProductForUpdate row-locks the product until the surrounding transaction ends.
func (r *productRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1 FOR UPDATE`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return product, nil
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + productColumns + `, c.id, c.name, c.slug
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.slug = $1`

	product := &models.Product{}

	var (
		catID   uuid.NullUUID
		catName *string
		catSlug *string
	)

	err := r.DB.QueryRowContext(dbCtx, query, slug).Scan(&product.ID, &product.CategoryID, &product.Name, &product.Slug, &product.Description, &product.Price, &product.Stock, &product.Available, &product.CreatedAt, &product.UpdatedAt, &catID, &catName, &catSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}

	if catID.Valid && catName != nil && catSlug != nil {
		product.Category = &models.Category{ID: catID.UUID, Name: *catName, Slug: *catSlug}
	}

	return product, nil
}

// ListProducts returns available products only, optionally within one category.
func (r *productRepository) ListProducts(ctx context.Context, categoryID uuid.NullUUID, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM products p WHERE p.available = TRUE AND ($1::uuid IS NULL OR p.category_id = $1)`

	if err := r.DB.QueryRowContext(dbCtx, countQuery, categoryID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.available = TRUE AND ($1::uuid IS NULL OR p.category_id = $1)
		ORDER BY p.name, p.id
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(dbCtx, query, categoryID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	products := make([]*models.Product, 0, size)

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	category := &models.Category{}

	query := `SELECT id, name, slug FROM categories WHERE slug = $1`

	if err := r.DB.QueryRowContext(dbCtx, query, slug).Scan(&category.ID, &category.Name, &category.Slug); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// DecrementStock takes qty units only if the product is available and holds
// at least qty. It reports false when the guard rejected the update.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND available = TRUE AND stock >= $1`

	result, err := r.DB.ExecContext(dbCtx, query, qty, id)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get updated rows: %w", err)
	}

	return updatedRows == 1, nil
}
