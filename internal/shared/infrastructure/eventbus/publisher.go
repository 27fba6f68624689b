// Package eventbus distributes domain events to interested consumers,
// either synchronously in process or through RabbitMQ.
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tempora-app/tempora/internal/shared/domain"
)

// Publisher sends serialized domain events keyed by routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// PublishDomainEvents marshals and publishes a batch of domain events.
// Publish failures are logged, not returned: events are best-effort
// notifications and never roll back committed state.
func PublishDomainEvents(ctx context.Context, pub Publisher, logger *slog.Logger, events []domain.DomainEvent) {
	if pub == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			logger.Error("failed to marshal domain event",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				"error", err,
			)
			continue
		}
		if err := pub.Publish(ctx, event.RoutingKey(), payload); err != nil {
			logger.Error("failed to publish domain event",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				"error", err,
			)
		}
	}
}
