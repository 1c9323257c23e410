package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/logging"
)

// recordingChannel appends its name to a shared journal.
type recordingChannel struct {
	name    string
	journal *[]string
	err     error
}

func (c *recordingChannel) Notify(_ context.Context, _ domain.Order) error {
	*c.journal = append(*c.journal, c.name)
	return c.err
}

// silentChannel overrides nothing.
type silentChannel struct {
	BaseChannel
}

type mockCache struct {
	published []domain.Order
	err       error
}

func (m *mockCache) SetIdempotency(context.Context, string) (bool, error) { return true, nil }

func (m *mockCache) PublishOrderEvent(_ context.Context, order domain.Order) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, order)
	return nil
}

func TestBroadcast_AttachmentOrder(t *testing.T) {
	var journal []string
	a := &recordingChannel{name: "A", journal: &journal}
	b := &recordingChannel{name: "B", journal: &journal}

	hub := NewHub()
	hub.Attach(a)
	hub.Attach(b)

	require.NoError(t, hub.Broadcast(context.Background(), domain.Order{ID: 1}))
	assert.Equal(t, []string{"A", "B"}, journal)

	hub.Detach(a)
	journal = journal[:0]
	require.NoError(t, hub.Broadcast(context.Background(), domain.Order{ID: 1}))
	assert.Equal(t, []string{"B"}, journal)
}

func TestBroadcast_EmptyHub(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Broadcast(context.Background(), domain.Order{ID: 7}))
	assert.Equal(t, 0, hub.Len())
}

func TestAttach_DuplicatesAndDetachFirst(t *testing.T) {
	var journal []string
	a := &recordingChannel{name: "A", journal: &journal}
	b := &recordingChannel{name: "B", journal: &journal}

	hub := NewHub()
	hub.Attach(a)
	hub.Attach(b)
	hub.Attach(a)
	require.Equal(t, 3, hub.Len())

	require.NoError(t, hub.Broadcast(context.Background(), domain.Order{}))
	assert.Equal(t, []string{"A", "B", "A"}, journal)

	hub.Detach(a)
	journal = journal[:0]
	require.NoError(t, hub.Broadcast(context.Background(), domain.Order{}))
	assert.Equal(t, []string{"B", "A"}, journal)
}

func TestDetach_Absent(t *testing.T) {
	var journal []string
	hub := NewHub()
	hub.Attach(&recordingChannel{name: "A", journal: &journal})

	hub.Detach(&recordingChannel{name: "A", journal: &journal})
	assert.Equal(t, 1, hub.Len())
}

func TestBroadcast_FailFast(t *testing.T) {
	var journal []string
	boom := errors.New("boom")
	hub := NewHub()
	hub.Attach(&recordingChannel{name: "A", journal: &journal, err: boom})
	hub.Attach(&recordingChannel{name: "B", journal: &journal})

	err := hub.Broadcast(context.Background(), domain.Order{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A"}, journal)
}

func TestBroadcast_IsolatedDelivery(t *testing.T) {
	var journal []string
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	hub := NewHub(WithIsolatedDelivery())
	hub.Attach(&recordingChannel{name: "A", journal: &journal, err: errA})
	hub.Attach(&recordingChannel{name: "B", journal: &journal})
	hub.Attach(&recordingChannel{name: "C", journal: &journal, err: errC})

	err := hub.Broadcast(context.Background(), domain.Order{})
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)
	assert.Equal(t, []string{"A", "B", "C"}, journal)
}

func TestBroadcast_DetachDuringBroadcast(t *testing.T) {
	var journal []string
	hub := NewHub()
	b := &recordingChannel{name: "B", journal: &journal}
	detacher := &detachingChannel{hub: hub, target: b, journal: &journal}
	hub.Attach(detacher)
	hub.Attach(b)

	require.NoError(t, hub.Broadcast(context.Background(), domain.Order{}))
	// b was in the snapshot, so it is still notified this round
	assert.Equal(t, []string{"detach", "B"}, journal)
	assert.Equal(t, 1, hub.Len())
}

type detachingChannel struct {
	hub     *Hub
	target  Channel
	journal *[]string
}

func (c *detachingChannel) Notify(context.Context, domain.Order) error {
	*c.journal = append(*c.journal, "detach")
	c.hub.Detach(c.target)
	return nil
}

func TestBaseChannel_NoOp(t *testing.T) {
	hub := NewHub()
	hub.Attach(&silentChannel{})
	assert.NoError(t, hub.Broadcast(context.Background(), domain.Order{ID: 3}))
}

func TestEmailAndSMSChannels(t *testing.T) {
	var buf bytes.Buffer
	lg := logging.New(&buf)

	hub := NewHub()
	hub.Attach(NewEmailChannel(lg))
	hub.Attach(NewSMSChannel(lg))

	order := domain.Order{ID: 42, Status: "shipped"}
	require.NoError(t, hub.Broadcast(context.Background(), order))

	assert.Equal(t,
		"[LOG] Email: Order status 42 changed to shipped\n"+
			"[LOG] SMS: Order status 42 changed to shipped\n",
		buf.String())
}

func TestPublishChannel(t *testing.T) {
	var buf bytes.Buffer
	cache := &mockCache{}
	ch := NewPublishChannel(cache, logging.New(&buf))

	order := domain.Order{ID: 5, Status: domain.OrderStatusCreated}
	require.NoError(t, ch.Notify(context.Background(), order))
	assert.Equal(t, []domain.Order{order}, cache.published)
	assert.Equal(t, "[LOG] Publish: Order status 5 changed to created\n", buf.String())

	cache.err = errors.New("redis down")
	assert.ErrorIs(t, ch.Notify(context.Background(), order), cache.err)
}

func TestNewEmailChannel_DefaultLogger(t *testing.T) {
	ch := NewEmailChannel(nil)
	assert.Same(t, logging.Default(), ch.logger)
}
