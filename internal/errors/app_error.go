package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Meta       map[string]any
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

func (e *AppError) WithMeta(key string, value any) *AppError {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}

	e.Meta[key] = value

	return e
}

const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"
	ErrCodeUnavailable       = "UNAVAILABLE"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeTransient         = "TRANSIENT_FAILURE"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

// UnavailableError reports a product that exists but is not purchasable.
func UnavailableError(message string) *AppError {
	return NewAppError(ErrCodeUnavailable, message, http.StatusConflict)
}

func EmptyCartError(message string) *AppError {
	return NewAppError(ErrCodeEmptyCart, message, http.StatusBadRequest)
}

// TransientError marks a failure the caller may retry unchanged.
func TransientError(message string) *AppError {
	return NewAppError(ErrCodeTransient, message, http.StatusServiceUnavailable)
}

// StockShortfall describes the line that stopped a checkout.
type StockShortfall struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (s *StockShortfall) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", s.ProductID, s.Available, s.Requested)
}

// InsufficientStockError wraps a *StockShortfall, recoverable with errors.As.
func InsufficientStockError(productID uuid.UUID, available, requested int) *AppError {
	shortfall := &StockShortfall{ProductID: productID, Available: available, Requested: requested}

	return NewAppError(ErrCodeInsufficientStock, "Insufficient stock", http.StatusConflict).
		WithDetail(shortfall.Error()).
		WithMeta("product_id", productID.String()).
		WithMeta("available", available).
		WithMeta("requested", requested).
		WithError(shortfall)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
