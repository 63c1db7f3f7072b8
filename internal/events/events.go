package events

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const OrderPlacedType = "order.placed"

type OrderPlacedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderPlaced struct {
	EventType   string            `json:"event_type"`
	OrderID     uuid.UUID         `json:"order_id"`
	UserID      uuid.UUID         `json:"user_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []OrderPlacedItem `json:"items"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

func NewOrderPlaced(order *models.Order) OrderPlaced {
	items := make([]OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderPlacedItem{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}

	return OrderPlaced{
		EventType:   OrderPlacedType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       items,
		OccurredAt:  order.CreatedAt,
	}
}

// Publisher announces committed orders to downstream consumers.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error {
	return nil
}
