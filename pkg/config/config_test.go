package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, 30*time.Minute, cfg.SlotDuration)
	assert.Equal(t, 30*time.Minute, cfg.MinChunk)
	assert.Equal(t, 4*time.Hour, cfg.AutoSplitThreshold)
	assert.Equal(t, 30*time.Minute, cfg.MissedGrace)
	assert.Equal(t, "0.0.0.0:8080", cfg.APIAddr)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TEMPORA_ENV", "production")
	t.Setenv("TEMPORA_DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/tempora")
	t.Setenv("TEMPORA_SPLIT_THRESHOLD", "3h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/tempora", cfg.DatabaseURL)
	assert.Equal(t, 3*time.Hour, cfg.AutoSplitThreshold)
}

func TestEnvHelpers(t *testing.T) {
	t.Run("getEnv", func(t *testing.T) {
		t.Setenv("TEMPORA_TEST_STR", "set")
		assert.Equal(t, "set", getEnv("TEMPORA_TEST_STR", "fallback"))
		assert.Equal(t, "fallback", getEnv("TEMPORA_TEST_MISSING", "fallback"))
	})

	t.Run("getIntEnv", func(t *testing.T) {
		t.Setenv("TEMPORA_TEST_INT", "42")
		assert.Equal(t, 42, getIntEnv("TEMPORA_TEST_INT", 7))
		assert.Equal(t, 7, getIntEnv("TEMPORA_TEST_INT_MISSING", 7))

		t.Setenv("TEMPORA_TEST_INT_BAD", "not-a-number")
		assert.Equal(t, 7, getIntEnv("TEMPORA_TEST_INT_BAD", 7))
	})

	t.Run("getDurationEnv", func(t *testing.T) {
		t.Setenv("TEMPORA_TEST_DUR", "90m")
		assert.Equal(t, 90*time.Minute, getDurationEnv("TEMPORA_TEST_DUR", time.Hour))

		t.Setenv("TEMPORA_TEST_DUR_BAD", "soon")
		assert.Equal(t, time.Hour, getDurationEnv("TEMPORA_TEST_DUR_BAD", time.Hour))
	})
}
