package observability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "corr-123")
		assert.Equal(t, "corr-123", CorrelationIDFromContext(ctx))
	})

	t.Run("empty id generates one", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "")
		id := CorrelationIDFromContext(ctx)
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, CorrelationIDFromContext(context.Background()))
	})
}

func TestRequestID(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-9")
		assert.Equal(t, "req-9", RequestIDFromContext(ctx))
	})

	t.Run("independent of correlation id", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "corr")
		ctx = WithRequestID(ctx, "req")

		assert.Equal(t, "corr", CorrelationIDFromContext(ctx))
		assert.Equal(t, "req", RequestIDFromContext(ctx))
	})
}
