package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	CategoryID  uuid.NullUUID   `json:"category_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Category    *Category       `json:"category,omitempty"`
}

// Purchasable reports whether the product may be added to a cart.
func (p *Product) Purchasable() bool {
	return p.Available
}

// CanFulfil reports whether qty units can be taken from stock right now.
func (p *Product) CanFulfil(qty int) bool {
	return p.Available && p.Stock >= qty
}
