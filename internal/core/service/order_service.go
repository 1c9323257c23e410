package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/core/notify"
	"github.com/rl1809/techstore/internal/port"
)

var (
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrBroadcast        = errors.New("order broadcast failed")
)

type OrderService struct {
	users    port.UserRepository
	products port.ProductRepository
	orders   port.OrderRepository
	cache    port.CacheRepository
	hub      *notify.Hub
	mailer   port.Mailer
}

func NewOrderService(
	users port.UserRepository,
	products port.ProductRepository,
	orders port.OrderRepository,
	cache port.CacheRepository,
	hub *notify.Hub,
	mailer port.Mailer,
) *OrderService {
	return &OrderService{
		users:    users,
		products: products,
		orders:   orders,
		cache:    cache,
		hub:      hub,
		mailer:   mailer,
	}
}

// PlaceOrder assembles and stores an order for the user with the given
// e-mail, then broadcasts it and mails a confirmation. A broadcast failure
// is returned wrapped in ErrBroadcast together with the committed order.
func (s *OrderService) PlaceOrder(ctx context.Context, requestID, email string, productID int64) (*domain.Order, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ok, err := s.cache.SetIdempotency(ctx, "order:"+requestID)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	product, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	order, err := NewOrderBuilder(s.orders).Begin(user, product).Persist(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.hub.Broadcast(ctx, *order); err != nil {
		return order, fmt.Errorf("%w: order %d: %w", ErrBroadcast, order.ID, err)
	}

	s.mailer.SendOrderConfirmation(ctx, user.Email, user.Name, product.Name)
	return order, nil
}

// GetOrder returns domain.ErrNotFound for an unknown id.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}
