package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/techstore/internal/core/domain"
)

// MemoryAdapter is an in-process store enforcing the same unique and
// reference constraints as the SQL schema. It also serves as a cache whose
// published events are kept for inspection.
type MemoryAdapter struct {
	mu sync.RWMutex

	users        map[int64]domain.User
	usersByEmail map[string]int64
	products     map[int64]domain.Product
	orders       map[int64]domain.Order
	idempotency  map[string]struct{}
	events       []domain.Order

	nextUserID    int64
	nextProductID int64
	nextOrderID   int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		users:        make(map[int64]domain.User),
		usersByEmail: make(map[string]int64),
		products:     make(map[int64]domain.Product),
		orders:       make(map[int64]domain.Order),
		idempotency:  make(map[string]struct{}),
	}
}

func (m *MemoryAdapter) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usersByEmail[user.Email]; ok {
		return &domain.ConstraintError{Kind: domain.ConstraintUnique, Field: "email"}
	}
	m.nextUserID++
	user.ID = m.nextUserID
	m.users[user.ID] = *user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *MemoryAdapter) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryAdapter) CreateProduct(_ context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextProductID++
	product.ID = m.nextProductID
	m.products[product.ID] = cloneProduct(*product)
	return nil
}

func (m *MemoryAdapter) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (m *MemoryAdapter) ListProducts(_ context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryAdapter) CountProducts(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products), nil
}

func (m *MemoryAdapter) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[order.UserID]; !ok {
		return &domain.ConstraintError{Kind: domain.ConstraintReference, Field: "user_id"}
	}
	if _, ok := m.products[order.ProductID]; !ok {
		return &domain.ConstraintError{Kind: domain.ConstraintReference, Field: "product_id"}
	}
	m.nextOrderID++
	order.ID = m.nextOrderID
	m.orders[order.ID] = *order
	return nil
}

func (m *MemoryAdapter) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (m *MemoryAdapter) SetIdempotency(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.idempotency[key]; ok {
		return false, nil
	}
	m.idempotency[key] = struct{}{}
	return true, nil
}

func (m *MemoryAdapter) PublishOrderEvent(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, order)
	return nil
}

// Events returns the order events published so far.
func (m *MemoryAdapter) Events() []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Order(nil), m.events...)
}

func cloneProduct(p domain.Product) domain.Product {
	if p.Phone != nil {
		spec := *p.Phone
		p.Phone = &spec
	}
	if p.Computer != nil {
		spec := *p.Computer
		p.Computer = &spec
	}
	return p
}
