// Package notify fans change notifications out to subscribers over an
// in-process watermill pub/sub. A notification carries only the path that
// changed; subscribers re-query what they need.
package notify

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/showstore/internal/logging"
	"github.com/mesh-intelligence/showstore/internal/metrics"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Topic carries every change notification.
const Topic = "showstore.changes"

// Bus publishes changes and hands them to subscribers. Delivery order
// between two notifications is not guaranteed.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewBus creates a bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			logging.NewWatermillAdapter(logger.With().Str("component", "notify").Logger()),
		),
		logger: logger,
	}
}

// Notify publishes one change per path. Paths with no subscriber are
// dropped.
func (b *Bus) Notify(paths ...string) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}
	for _, p := range paths {
		payload, err := json.Marshal(types.Change{Path: p})
		if err != nil {
			b.logger.Error().Err(err).Str("path", p).Msg("encoding change")
			continue
		}
		if err := b.pubsub.Publish(Topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			b.logger.Warn().Err(err).Str("path", p).Msg("publishing change")
			continue
		}
		metrics.NotificationsSent.Inc()
	}
}

// Subscribe returns a channel of changes that closes when ctx is done or
// the bus closes.
func (b *Bus) Subscribe(ctx context.Context) (<-chan types.Change, error) {
	msgs, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, err
	}
	out := make(chan types.Change, 16)
	go func() {
		defer close(out)
		for msg := range msgs {
			var c types.Change
			if err := json.Unmarshal(msg.Payload, &c); err != nil {
				b.logger.Warn().Err(err).Str("uuid", msg.UUID).Msg("dropping malformed change")
				msg.Ack()
				continue
			}
			select {
			case out <- c:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down and closes every subscription.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
