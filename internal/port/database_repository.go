package port

import (
	"context"

	"github.com/rl1809/techstore/internal/core/domain"
)

// Unique and reference rejections are reported as *domain.ConstraintError.

type UserRepository interface {
	// CreateUser inserts the user and sets its generated ID
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByEmail returns domain.ErrNotFound when no user matches
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProductRepository interface {
	// CreateProduct inserts the product and sets its generated ID
	CreateProduct(ctx context.Context, product *domain.Product) error

	// GetProduct returns domain.ErrNotFound when the id is unknown
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)

	CountProducts(ctx context.Context) (int, error)
}

type OrderRepository interface {
	// CreateOrder inserts the order in a single transaction and sets its generated ID
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder returns domain.ErrNotFound when the id is unknown
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
}

// DatabaseRepository is the full persistence surface a storage adapter provides.
type DatabaseRepository interface {
	UserRepository
	ProductRepository
	OrderRepository
}
