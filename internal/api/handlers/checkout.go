package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLength = 255
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	validator       *validator.Validate
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, validator: validator.New()}
}

// Checkout godoc
//	@Summary		Place an order from the current cart
//	@Description	Converts the cart into an order, decrements stock and empties the cart in one transaction. Retrying with the same Idempotency-Key returns the original order.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string					false	"Client generated retry key"
//	@Param			checkout		body		models.CheckoutRequest	true	"Shipping and contact details"
//	@Success		201				{object}	models.Order			"Order placed"
//	@Failure		400				{object}	response.ErrorResponse	"Validation error or empty cart"
//	@Failure		401				{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404				{object}	response.ErrorResponse	"A product in the cart no longer exists"
//	@Failure		409				{object}	response.ErrorResponse	"Insufficient stock"
//	@Failure		429				{object}	response.ErrorResponse	"Too many checkout attempts"
//	@Failure		503				{object}	response.ErrorResponse	"Transient failure, retry"
//	@Security		BearerAuth
//	@Router			/checkout [post]
func (h *CheckoutHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r, logger)
		if !ok {
			return
		}

		logger = logger.With(slog.String("userID", claims.UserID.String()))

		key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
		if len(key) > maxIdempotencyKeyLength {
			response.Error(w, errors.AddValidationError(IdempotencyKeyHeader, "must be at most 255 characters"))
			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid checkout input")
			return
		}
		req.IdempotencyKey = key

		order, err := h.checkoutService.Checkout(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Warn("Checkout failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Order placed", slog.String("orderID", order.ID.String()))
		response.Success(w, http.StatusCreated, order)
	}
}
