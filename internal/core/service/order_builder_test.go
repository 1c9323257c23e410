package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/techstore/internal/core/domain"
)

// Mock OrderRepository enforcing references against known ids
type mockOrderRepo struct {
	users    map[int64]bool
	products map[int64]bool
	orders   map[int64]domain.Order
	nextID   int64
	err      error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		users:    map[int64]bool{1: true},
		products: map[int64]bool{10: true},
		orders:   make(map[int64]domain.Order),
	}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.err != nil {
		return m.err
	}
	if !m.users[order.UserID] {
		return &domain.ConstraintError{Kind: domain.ConstraintReference, Field: "user_id"}
	}
	if !m.products[order.ProductID] {
		return &domain.ConstraintError{Kind: domain.ConstraintReference, Field: "product_id"}
	}
	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = *order
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

var (
	testUser    = &domain.User{ID: 1, Email: "a@b.com", Name: "Ann"}
	testProduct = &domain.Product{ID: 10, Name: "iPhone 15", Category: domain.CategoryPhone, Phone: &domain.PhoneSpec{SimCount: 2}}
)

func TestBuilder_DefaultStatus(t *testing.T) {
	repo := newMockOrderRepo()
	ctx := context.Background()

	first, err := NewOrderBuilder(repo).Begin(testUser, testProduct).Persist(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCreated, first.Status)
	assert.Equal(t, int64(1), first.UserID)
	assert.Equal(t, int64(10), first.ProductID)
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := NewOrderBuilder(repo).Begin(testUser, testProduct).Persist(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBuilder_WithStatus(t *testing.T) {
	repo := newMockOrderRepo()

	order, err := NewOrderBuilder(repo).
		Begin(testUser, testProduct).
		WithStatus("paid").
		WithStatus("shipped").
		Persist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shipped", order.Status)
	assert.Equal(t, "shipped", repo.orders[order.ID].Status)
}

func TestBuilder_WithStatusWithoutOrder(t *testing.T) {
	b := NewOrderBuilder(newMockOrderRepo())
	assert.NotPanics(t, func() { b.WithStatus("paid") })
	assert.Nil(t, b.Current())

	_, err := b.Persist(context.Background())
	assert.ErrorIs(t, err, ErrNoOrderInProgress)
}

func TestBuilder_MissingReferences(t *testing.T) {
	repo := newMockOrderRepo()
	ctx := context.Background()

	_, err := NewOrderBuilder(repo).Begin(nil, testProduct).Persist(ctx)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = NewOrderBuilder(repo).Begin(testUser, nil).Persist(ctx)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	unsaved := &domain.User{Email: "ghost@b.com"}
	_, err = NewOrderBuilder(repo).Begin(unsaved, testProduct).Persist(ctx)
	assert.True(t, domain.IsReferenceViolation(err))

	assert.Empty(t, repo.orders)
}

func TestBuilder_Current(t *testing.T) {
	b := NewOrderBuilder(newMockOrderRepo())

	b.Begin(testUser, testProduct).WithStatus("draft")
	cur := b.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "draft", cur.Status)
	assert.Zero(t, cur.ID)

	persisted, err := b.Persist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, persisted.ID, b.Current().ID)
}

func TestBuilder_StatusFrozenAfterPersist(t *testing.T) {
	b := NewOrderBuilder(newMockOrderRepo())
	order, err := b.Begin(testUser, testProduct).Persist(context.Background())
	require.NoError(t, err)

	b.WithStatus("cancelled")
	assert.Equal(t, domain.OrderStatusCreated, b.Current().Status)

	order.Status = "mutated"
	assert.Equal(t, domain.OrderStatusCreated, b.Current().Status)

	_, err = b.Persist(context.Background())
	assert.ErrorIs(t, err, ErrOrderPersisted)
}

func TestBuilder_BeginOverwritesUnsaved(t *testing.T) {
	repo := newMockOrderRepo()
	repo.products[11] = true
	b := NewOrderBuilder(repo)

	b.Begin(testUser, testProduct).WithStatus("draft")
	other := &domain.Product{ID: 11}
	order, err := b.Begin(testUser, other).Persist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), order.ProductID)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	assert.Len(t, repo.orders, 1)
}

func TestBuilder_StorageError(t *testing.T) {
	repo := newMockOrderRepo()
	repo.err = errors.New("connection lost")

	_, err := NewOrderBuilder(repo).Begin(testUser, testProduct).Persist(context.Background())
	assert.ErrorIs(t, err, repo.err)
	assert.NotErrorIs(t, err, domain.ErrConstraintViolation)
}
