package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineTotal prices the line at the live product price.
func (i CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}

	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}

	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}

	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

type CartLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	Items      []CartLineResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func NewCartResponse(cart *Cart) *CartResponse {
	lines := make([]CartLineResponse, 0, len(cart.Items))

	for _, item := range cart.Items {
		line := CartLineResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.Slug = item.Product.Slug
			line.UnitPrice = item.Product.Price
		}
		lines = append(lines, line)
	}

	return &CartResponse{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      lines,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
		UpdatedAt:  cart.UpdatedAt,
	}
}

// MaxLineQuantity caps a single cart line, matching the cart_items check.
const MaxLineQuantity = 10000

// Quantity defaults to 1 when omitted.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"omitempty,min=1,max=10000"`
}

// A quantity of zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=10000"`
}
