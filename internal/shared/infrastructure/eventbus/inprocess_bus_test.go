package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/shared/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInProcessBus(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to matching subscribers", func(t *testing.T) {
		bus := NewInProcessBus(testLogger())

		var got []byte
		bus.Subscribe("scheduling.task.created", func(_ context.Context, _ string, payload []byte) error {
			got = payload
			return nil
		})

		require.NoError(t, bus.Publish(ctx, "scheduling.task.created", []byte(`{"title":"x"}`)))
		assert.JSONEq(t, `{"title":"x"}`, string(got))
	})

	t.Run("other routing keys are not delivered", func(t *testing.T) {
		bus := NewInProcessBus(testLogger())

		delivered := false
		bus.Subscribe("scheduling.task.created", func(context.Context, string, []byte) error {
			delivered = true
			return nil
		})

		require.NoError(t, bus.Publish(ctx, "scheduling.task.missed", nil))
		assert.False(t, delivered)
	})

	t.Run("subscriber failure does not fail the publish", func(t *testing.T) {
		bus := NewInProcessBus(testLogger())
		bus.Subscribe("k", func(context.Context, string, []byte) error {
			return errors.New("boom")
		})

		assert.NoError(t, bus.Publish(ctx, "k", nil))
	})
}

type capturingPublisher struct {
	published map[string][][]byte
	fail      bool
}

func (p *capturingPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	if p.fail {
		return errors.New("broker down")
	}
	if p.published == nil {
		p.published = make(map[string][][]byte)
	}
	p.published[routingKey] = append(p.published[routingKey], payload)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

type thingHappened struct {
	domain.BaseEvent
	Detail string `json:"detail"`
}

func TestPublishDomainEvents(t *testing.T) {
	ctx := context.Background()

	event := thingHappened{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "Thing", "things.happened"),
		Detail:    "it did",
	}

	t.Run("publishes each event under its routing key", func(t *testing.T) {
		pub := &capturingPublisher{}

		PublishDomainEvents(ctx, pub, testLogger(), []domain.DomainEvent{event, event})

		require.Len(t, pub.published["things.happened"], 2)

		var decoded thingHappened
		require.NoError(t, json.Unmarshal(pub.published["things.happened"][0], &decoded))
		assert.Equal(t, "it did", decoded.Detail)
	})

	t.Run("publish failures are swallowed", func(t *testing.T) {
		pub := &capturingPublisher{fail: true}

		assert.NotPanics(t, func() {
			PublishDomainEvents(ctx, pub, testLogger(), []domain.DomainEvent{event})
		})
	})

	t.Run("nil publisher is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			PublishDomainEvents(ctx, nil, testLogger(), []domain.DomainEvent{event})
		})
	})
}
