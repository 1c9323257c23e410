// Package notify broadcasts order state changes to attached channels.
package notify

import (
	"context"
	"fmt"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/logging"
	"github.com/rl1809/techstore/internal/port"
)

// Channel is told about an order's current state.
type Channel interface {
	Notify(ctx context.Context, order domain.Order) error
}

// BaseChannel is a Channel that does nothing. Embed it to get a valid
// channel without overriding Notify.
type BaseChannel struct{}

func (BaseChannel) Notify(context.Context, domain.Order) error { return nil }

func statusLine(kind string, order domain.Order) string {
	return fmt.Sprintf("%s: Order status %d changed to %s", kind, order.ID, order.Status)
}

type EmailChannel struct {
	logger *logging.Logger
}

// NewEmailChannel returns an e-mail style channel. A nil logger selects
// the process-wide one.
func NewEmailChannel(logger *logging.Logger) *EmailChannel {
	return &EmailChannel{logger: logging.OrDefault(logger)}
}

func (c *EmailChannel) Notify(_ context.Context, order domain.Order) error {
	c.logger.Log(statusLine("Email", order))
	return nil
}

type SMSChannel struct {
	logger *logging.Logger
}

func NewSMSChannel(logger *logging.Logger) *SMSChannel {
	return &SMSChannel{logger: logging.OrDefault(logger)}
}

func (c *SMSChannel) Notify(_ context.Context, order domain.Order) error {
	c.logger.Log(statusLine("SMS", order))
	return nil
}

// PublishChannel logs the change and publishes it through the cache's
// pub/sub fan-out.
type PublishChannel struct {
	cache  port.CacheRepository
	logger *logging.Logger
}

func NewPublishChannel(cache port.CacheRepository, logger *logging.Logger) *PublishChannel {
	return &PublishChannel{cache: cache, logger: logging.OrDefault(logger)}
}

func (c *PublishChannel) Notify(ctx context.Context, order domain.Order) error {
	c.logger.Log(statusLine("Publish", order))
	if err := c.cache.PublishOrderEvent(ctx, order); err != nil {
		return fmt.Errorf("publish order %d: %w", order.ID, err)
	}
	return nil
}
