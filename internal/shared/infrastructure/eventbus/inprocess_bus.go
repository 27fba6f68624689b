package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Subscriber handles events for one routing-key pattern.
type Subscriber func(ctx context.Context, routingKey string, payload []byte) error

// InProcessBus is an in-memory event bus for local mode (no RabbitMQ).
// Events are delivered synchronously to registered subscribers.
type InProcessBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Subscriber
	logger      *slog.Logger
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		subscribers: make(map[string][]Subscriber),
		logger:      logger,
	}
}

// Subscribe registers a subscriber for an exact routing key.
func (b *InProcessBus) Subscribe(routingKey string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[routingKey] = append(b.subscribers[routingKey], sub)
}

// Publish dispatches the event synchronously to all matching subscribers.
// Subscriber failures are logged; the publish itself never fails in local
// mode.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.RLock()
	subs := b.subscribers[routingKey]
	b.mu.RUnlock()

	start := time.Now()
	for _, sub := range subs {
		if err := sub(ctx, routingKey, payload); err != nil {
			b.logger.Error("event subscriber failed",
				"routing_key", routingKey,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"subscribers", len(subs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}
