package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/port"
)

var (
	ErrNoOrderInProgress = errors.New("no order in progress")
	ErrOrderPersisted    = errors.New("order already persisted")
)

// OrderBuilder assembles one order at a time and persists it in a single
// step. It is not safe for concurrent use.
type OrderBuilder struct {
	orders    port.OrderRepository
	order     *domain.Order
	persisted bool
}

func NewOrderBuilder(orders port.OrderRepository) *OrderBuilder {
	return &OrderBuilder{orders: orders}
}

// Begin starts a new order for user and product, discarding any unsaved
// one. A nil user or product leaves a zero reference that Persist rejects.
func (b *OrderBuilder) Begin(user *domain.User, product *domain.Product) *OrderBuilder {
	order := &domain.Order{Status: domain.OrderStatusCreated}
	if user != nil {
		order.UserID = user.ID
	}
	if product != nil {
		order.ProductID = product.ID
	}
	b.order = order
	b.persisted = false
	return b
}

// WithStatus overrides the status of the order in progress. Without one, or
// once it is persisted, it does nothing.
func (b *OrderBuilder) WithStatus(status string) *OrderBuilder {
	if b.order != nil && !b.persisted {
		b.order.Status = status
	}
	return b
}

// Persist writes the order in progress and returns it with its generated ID.
func (b *OrderBuilder) Persist(ctx context.Context) (*domain.Order, error) {
	if b.order == nil {
		return nil, ErrNoOrderInProgress
	}
	if b.persisted {
		return nil, ErrOrderPersisted
	}
	if b.order.CreatedAt.IsZero() {
		b.order.CreatedAt = time.Now().UTC()
	}
	if err := b.orders.CreateOrder(ctx, b.order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	b.persisted = true
	return b.Current(), nil
}

// Current returns the order in progress or the last persisted one.
func (b *OrderBuilder) Current() *domain.Order {
	if b.order == nil {
		return nil
	}
	o := *b.order
	return &o
}
