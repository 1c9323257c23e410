package notify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rl1809/techstore/internal/core/domain"
)

// Hub keeps an ordered list of channels and broadcasts orders to them.
// Channels are matched by identity, so they must be comparable (pointers).
type Hub struct {
	mu       sync.Mutex
	channels []Channel
	isolated bool
}

type HubOption func(*Hub)

// WithIsolatedDelivery makes Broadcast notify every channel even after one
// fails, returning all failures joined.
func WithIsolatedDelivery() HubOption {
	return func(h *Hub) { h.isolated = true }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach appends ch. The same channel may be attached more than once.
func (h *Hub) Attach(ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels = append(h.channels, ch)
}

// Detach removes the first attachment of ch, if any.
func (h *Hub) Detach(ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.channels {
		if c == ch {
			h.channels = slices.Delete(h.channels, i, i+1)
			return
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}

// Broadcast notifies the channels attached at call time, in attachment
// order, on the calling goroutine. By default the first failure stops
// delivery.
func (h *Hub) Broadcast(ctx context.Context, order domain.Order) error {
	h.mu.Lock()
	snapshot := slices.Clone(h.channels)
	isolated := h.isolated
	h.mu.Unlock()

	var errs []error
	for i, ch := range snapshot {
		if err := ch.Notify(ctx, order); err != nil {
			err = fmt.Errorf("channel %d (%T): %w", i, ch, err)
			if !isolated {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
