package port

import (
	"context"

	"github.com/rl1809/techstore/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// PublishOrderEvent fans the order state out to subscribers
	PublishOrderEvent(ctx context.Context, order domain.Order) error
}
