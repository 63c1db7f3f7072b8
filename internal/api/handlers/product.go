package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProduct godoc
//	@Summary		Get a product by slug
//	@Description	Retrieves a single catalog product by its URL slug.
//	@Tags			Products
//	@Produce		json
//	@Param			slug	path		string					true	"Product slug"
//	@Success		200		{object}	models.Product			"Successfully retrieved product"
//	@Failure		400		{object}	response.ErrorResponse	"Missing slug"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Router			/products/{slug} [get]
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		slug := r.PathValue("slug")
		if slug == "" {
			response.Error(w, errors.BadRequestError("Missing path parameter 'slug'"))
			return
		}

		logger = logger.With(slog.String("slug", slug))

		product, err := h.productService.GetProductBySlug(r.Context(), slug)
		if err != nil {
			logger.Warn("Failed to get product", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Product retrieved successfully", slog.String("productID", product.ID.String()))
		response.Success(w, http.StatusOK, product)
	}
}

// ListProducts godoc
//	@Summary		List available products
//	@Description	Retrieves a paginated list of available products, optionally within one category.
//	@Tags			Products
//	@Produce		json
//	@Param			category	query		string												false	"Category slug"
//	@Param			page		query		int													false	"Page number (default: 1)"					minimum(1)
//	@Param			pageSize	query		int													false	"Items per page (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.Product}	"Successfully retrieved products"
//	@Failure		404			{object}	response.ErrorResponse								"Category not found"
//	@Failure		500			{object}	response.ErrorResponse								"Internal server error"
//	@Router			/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		category := r.URL.Query().Get("category")
		page, pageSize := models.NormalizePage(utils.ParsePagination(r))

		logger = logger.With(slog.String("category", category), slog.Int("page", page), slog.Int("pageSize", pageSize))

		products, total, err := h.productService.ListProducts(r.Context(), category, page, pageSize)
		if err != nil {
			logger.Error("Failed to list products", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Products listed successfully", slog.Int("count", len(products)), slog.Int("total", total))
		response.Success(w, http.StatusOK, models.NewPaginatedResponse(products, total, page, pageSize))
	}
}
