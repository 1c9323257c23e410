package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/techstore/internal/core/domain"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour

	// OrderEventsChannel is the pub/sub channel order events are published on.
	OrderEventsChannel = "orders:events"
)

// OrderEvent is the JSON payload published for every order broadcast.
type OrderEvent struct {
	OrderID   int64     `json:"order_id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) PublishOrderEvent(ctx context.Context, order domain.Order) error {
	payload, err := json.Marshal(OrderEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		ProductID: order.ProductID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return r.client.Publish(ctx, OrderEventsChannel, payload).Err()
}

// SubscribeOrderEvents returns a subscription to the order events channel.
// The caller closes it.
func (r *RedisAdapter) SubscribeOrderEvents(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, OrderEventsChannel)
}
