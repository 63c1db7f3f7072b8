package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cache stores JSON encoded values. A ttl of zero uses the configured default.
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

const OrderKeyPrefix = "order"

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// OrderKey addresses an immutable order snapshot.
func OrderKey(id uuid.UUID) string {
	return Key(OrderKeyPrefix, id.String())
}
