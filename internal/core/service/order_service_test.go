package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/core/notify"
	"github.com/rl1809/techstore/internal/logging"
)

// Mock CacheRepository
type mockCacheRepo struct {
	idempotencySet map[string]bool
	published      []domain.Order
	err            error
	mu             sync.Mutex
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) PublishOrderEvent(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, order)
	return nil
}

// lockedOrderRepo serialises the builder mock for concurrent tests
type lockedOrderRepo struct {
	mu sync.Mutex
	*mockOrderRepo
}

func (l *lockedOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mockOrderRepo.CreateOrder(ctx, order)
}

type failingChannel struct {
	err error
}

func (c *failingChannel) Notify(context.Context, domain.Order) error { return c.err }

type orderFixture struct {
	svc    *OrderService
	cache  *mockCacheRepo
	orders *lockedOrderRepo
	mailer *mockMailer
	hub    *notify.Hub
	out    *bytes.Buffer
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	users := newMockUserRepo()
	users.users["a@b.com"] = domain.User{ID: 1, Email: "a@b.com", Name: "Ann"}
	products := &mockProductRepo{}
	products.products = []domain.Product{*testProduct}
	orders := &lockedOrderRepo{mockOrderRepo: newMockOrderRepo()}

	out := &bytes.Buffer{}
	lg := logging.New(out)
	hub := notify.NewHub()
	hub.Attach(notify.NewEmailChannel(lg))
	hub.Attach(notify.NewSMSChannel(lg))

	cache := newMockCacheRepo()
	mailer := &mockMailer{}
	return &orderFixture{
		svc:    NewOrderService(users, products, orders, cache, hub, mailer),
		cache:  cache,
		orders: orders,
		mailer: mailer,
		hub:    hub,
		out:    out,
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.PlaceOrder(context.Background(), "req-1", "a@b.com", 10)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if order.ID == 0 {
		t.Error("expected generated order ID")
	}
	if order.Status != domain.OrderStatusCreated {
		t.Errorf("expected created status, got %s", order.Status)
	}

	want := "[LOG] Email: Order status 1 changed to created\n[LOG] SMS: Order status 1 changed to created\n"
	if f.out.String() != want {
		t.Errorf("unexpected broadcast output:\n%s", f.out.String())
	}

	if len(f.mailer.orders) != 1 || f.mailer.orders[0] != "a@b.com/Ann/iPhone 15" {
		t.Errorf("expected one order confirmation, got %v", f.mailer.orders)
	}

	got, err := f.svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.ProductID != 10 {
		t.Errorf("expected product 10, got %d", got.ProductID)
	}
}

func TestPlaceOrder_DuplicateRequest(t *testing.T) {
	f := newOrderFixture(t)

	// First request
	_, err := f.svc.PlaceOrder(context.Background(), "req-1", "a@b.com", 10)
	if err != nil {
		t.Fatalf("first order failed: %v", err)
	}

	// Duplicate request with same requestID
	_, err = f.svc.PlaceOrder(context.Background(), "req-1", "a@b.com", 10)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got: %v", err)
	}

	// Only one order should be stored
	if len(f.orders.orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(f.orders.orders))
	}
}

func TestPlaceOrder_EmptyRequestIDIsUnique(t *testing.T) {
	f := newOrderFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.PlaceOrder(context.Background(), "", "a@b.com", 10); err != nil {
			t.Fatalf("order %d failed: %v", i, err)
		}
	}
	if len(f.cache.idempotencySet) != 3 {
		t.Errorf("expected 3 idempotency keys, got %d", len(f.cache.idempotencySet))
	}
}

func TestPlaceOrder_UnknownUserOrProduct(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "req-1", "ghost@b.com", 10)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got: %v", err)
	}

	_, err = f.svc.PlaceOrder(context.Background(), "req-2", "a@b.com", 99)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got: %v", err)
	}

	if f.out.Len() != 0 {
		t.Errorf("expected no broadcast, got %q", f.out.String())
	}
}

func TestPlaceOrder_CacheFailure(t *testing.T) {
	f := newOrderFixture(t)
	f.cache.err = errors.New("redis down")

	_, err := f.svc.PlaceOrder(context.Background(), "req-1", "a@b.com", 10)
	if !errors.Is(err, f.cache.err) {
		t.Errorf("expected cache error, got: %v", err)
	}
}

func TestPlaceOrder_BroadcastFailure(t *testing.T) {
	f := newOrderFixture(t)
	boom := errors.New("sms gateway down")
	f.hub.Attach(&failingChannel{err: boom})

	order, err := f.svc.PlaceOrder(context.Background(), "req-1", "a@b.com", 10)
	if !errors.Is(err, ErrBroadcast) || !errors.Is(err, boom) {
		t.Fatalf("expected broadcast error, got: %v", err)
	}
	if order == nil || order.ID == 0 {
		t.Error("expected the committed order alongside the error")
	}
	if len(f.mailer.orders) != 0 {
		t.Error("expected no order confirmation after a failed broadcast")
	}
}

func TestPlaceOrder_Concurrent(t *testing.T) {
	f := newOrderFixture(t)
	totalRequests := 50

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			// every pair of goroutines shares a request id
			requestID := "req-" + string(rune('A'+id/2))
			if _, err := f.svc.PlaceOrder(context.Background(), requestID, "a@b.com", 10); err == nil {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != int32(totalRequests/2) {
		t.Errorf("expected %d successes, got %d", totalRequests/2, successCount.Load())
	}
	if len(f.orders.orders) != totalRequests/2 {
		t.Errorf("expected %d orders, got %d", totalRequests/2, len(f.orders.orders))
	}
}
