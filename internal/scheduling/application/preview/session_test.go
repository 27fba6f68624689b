package preview

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

func someBlock(t *testing.T, start time.Time) *domain.ScheduleBlock {
	t.Helper()
	block, err := domain.NewScheduleBlock(uuid.New(), uuid.New(), start, start.Add(time.Hour))
	require.NoError(t, err)
	return block
}

func TestFingerprint(t *testing.T) {
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	t.Run("stable for the same blocks", func(t *testing.T) {
		a := someBlock(t, start)
		b := someBlock(t, start.Add(2*time.Hour))

		assert.Equal(t,
			Fingerprint([]*domain.ScheduleBlock{a, b}),
			Fingerprint([]*domain.ScheduleBlock{a, b}),
		)
	})

	t.Run("order independent", func(t *testing.T) {
		a := someBlock(t, start)
		b := someBlock(t, start.Add(2*time.Hour))

		assert.Equal(t,
			Fingerprint([]*domain.ScheduleBlock{a, b}),
			Fingerprint([]*domain.ScheduleBlock{b, a}),
		)
	})

	t.Run("changes when a block is added", func(t *testing.T) {
		a := someBlock(t, start)
		b := someBlock(t, start.Add(2*time.Hour))

		assert.NotEqual(t,
			Fingerprint([]*domain.ScheduleBlock{a}),
			Fingerprint([]*domain.ScheduleBlock{a, b}),
		)
	})

	t.Run("empty set has a fingerprint too", func(t *testing.T) {
		assert.NotEmpty(t, Fingerprint(nil))
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	session := &Session{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	t.Run("get without put", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.Get(ctx, userID)
		assert.ErrorIs(t, err, ErrNoActivePreview)
	})

	t.Run("put then get", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Put(ctx, session))

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, session, got)
	})

	t.Run("put supersedes the active session", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Put(ctx, session))

		newer := &Session{UserID: userID, SnapshotHash: "abc", CreatedAt: time.Now().UTC()}
		require.NoError(t, store.Put(ctx, newer))

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, newer, got)
	})

	t.Run("delete", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Put(ctx, session))
		require.NoError(t, store.Delete(ctx, userID))

		_, err := store.Get(ctx, userID)
		assert.ErrorIs(t, err, ErrNoActivePreview)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		assert.NoError(t, store.Delete(ctx, userID))
	})

	t.Run("sessions are per user", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Put(ctx, session))

		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNoActivePreview)
	})
}
