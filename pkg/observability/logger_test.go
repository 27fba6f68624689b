package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, level LogLevel) LogConfig {
	return LogConfig{
		Level:          level,
		Format:         LogFormatJSON,
		Output:         buf,
		ServiceName:    "tempora",
		ServiceVersion: "test",
	}
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	t.Run("includes service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(jsonLogger(&buf, LogLevelInfo))

		logger.Info("hello", "key", "value")

		entry := lastEntry(t, &buf)
		assert.Equal(t, "tempora", entry["service"])
		assert.Equal(t, "test", entry["version"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("respects the level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(jsonLogger(&buf, LogLevelWarn))

		logger.Info("dropped")
		assert.Zero(t, buf.Len())

		logger.Warn("kept")
		assert.NotZero(t, buf.Len())
	})

	t.Run("carries correlation and request IDs from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(jsonLogger(&buf, LogLevelInfo))

		ctx := WithCorrelationID(context.Background(), "corr-1")
		ctx = WithRequestID(ctx, "req-1")
		logger.InfoContext(ctx, "traced")

		entry := lastEntry(t, &buf)
		assert.Equal(t, "corr-1", entry[CorrelationIDKey])
		assert.Equal(t, "req-1", entry[RequestIDKey])
	})
}
