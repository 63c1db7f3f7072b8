package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

type ShippingDetails struct {
	FirstName  string `json:"first_name"  validate:"required,max=100"`
	LastName   string `json:"last_name"   validate:"required,max=100"`
	Email      string `json:"email"       validate:"required,email"`
	Phone      string `json:"phone"       validate:"omitempty,max=32"`
	Address    string `json:"address"     validate:"required,max=250"`
	City       string `json:"city"        validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country"     validate:"required,iso3166_1_alpha2"`
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Status         OrderStatus     `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Shipping       ShippingDetails `json:"shipping"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ItemsTotal recomputes the total from the frozen line prices.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}

	return total
}

// IdempotencyKey comes from the Idempotency-Key header, never the body.
type CheckoutRequest struct {
	Shipping       ShippingDetails `json:"shipping" validate:"required"`
	IdempotencyKey string          `json:"-"`
}
