package service

import (
	"context"
	"database/sql"
	stdErrors "errors"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

// ProductService is the read side of the catalog.
type ProductService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, categorySlug string, page, pageSize int) ([]*models.Product, int, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}

	return product, nil
}

func (s *productService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {

	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, productLookupError(err)
	}

	return product, nil
}

// ListProducts returns a page of available products. An empty categorySlug
// lists the whole catalog.
func (s *productService) ListProducts(ctx context.Context, categorySlug string, page, pageSize int) ([]*models.Product, int, error) {

	page, pageSize = models.NormalizePage(page, pageSize)

	var categoryID uuid.NullUUID

	if categorySlug != "" {
		category, err := s.repo.GetCategoryBySlug(ctx, categorySlug)
		if err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				return nil, 0, errors.NotFoundError("Category not found").WithError(err)
			}
			return nil, 0, errors.DatabaseError("Failed to fetch category").WithError(err)
		}
		categoryID = uuid.NullUUID{UUID: category.ID, Valid: true}
	}

	products, total, err := s.repo.ListProducts(ctx, categoryID, page, pageSize)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch products").WithError(err)
	}

	return products, total, nil
}

func productLookupError(err error) error {
	if stdErrors.Is(err, sql.ErrNoRows) {
		return errors.NotFoundError("Product not found").WithError(err)
	}

	return errors.DatabaseError("Failed to fetch product").WithError(err)
}
