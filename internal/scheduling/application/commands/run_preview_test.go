package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/scheduling/engine"
)

var monday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func mondayAt(h, m int) time.Time {
	return time.Date(2026, 8, 31, h, m, 0, 0, time.UTC)
}

func mustTask(t *testing.T, userID uuid.UUID, title string, durationMin int, priority domain.Priority, deadline *time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(userID, title, "", durationMin, priority, deadline)
	require.NoError(t, err)
	task.ClearDomainEvents()
	return task
}

func newRunPreviewHandler(tasks *fakeTasks, blocks *fakeBlocks, store preview.Store) *RunPreviewHandler {
	return NewRunPreviewHandler(
		tasks,
		blocks,
		fixedPolicy{policy: domain.DefaultWorkingHoursPolicy()},
		store,
		engine.DefaultConfig(),
		discardLogger(),
	)
}

func TestRunPreviewHandler(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("computes and stores a draft", func(t *testing.T) {
		task := mustTask(t, userID, "Write report", 60, domain.PriorityHigh, nil)
		store := preview.NewMemoryStore()
		handler := newRunPreviewHandler(newFakeTasks(task), newFakeBlocks(), store)

		session, err := handler.Handle(ctx, RunPreviewCommand{
			UserID:     userID,
			RangeStart: monday,
			RangeEnd:   monday.AddDate(0, 0, 1),
		})
		require.NoError(t, err)

		require.Len(t, session.Result.Blocks, 1)
		assert.Equal(t, mondayAt(9, 0), session.Result.Blocks[0].StartTime())
		assert.Equal(t, mondayAt(10, 0), session.Result.Blocks[0].EndTime())
		assert.Equal(t, task.ID(), session.Result.Blocks[0].TaskID())
		assert.Empty(t, session.Result.Unplaced)

		// 60 of 480 available minutes.
		assert.InDelta(t, 12.5, session.Result.UtilizationPct, 0.01)

		stored, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, session, stored)
	})

	t.Run("committed state is untouched", func(t *testing.T) {
		task := mustTask(t, userID, "Write report", 60, domain.PriorityHigh, nil)
		tasks := newFakeTasks(task)
		blocks := newFakeBlocks()
		handler := newRunPreviewHandler(tasks, blocks, preview.NewMemoryStore())

		_, err := handler.Handle(ctx, RunPreviewCommand{
			UserID:     userID,
			RangeStart: monday,
			RangeEnd:   monday.AddDate(0, 0, 1),
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusWaiting, task.Status())
		saved, err := blocks.ListByUserRange(ctx, userID, monday, monday.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Empty(t, saved, "preview never persists blocks")
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		handler := newRunPreviewHandler(newFakeTasks(), newFakeBlocks(), preview.NewMemoryStore())

		_, err := handler.Handle(ctx, RunPreviewCommand{
			UserID:     userID,
			RangeStart: monday,
			RangeEnd:   monday.Add(-time.Hour),
		})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("unplaceable tasks surface as suggestions", func(t *testing.T) {
		task := mustTask(t, userID, "Marathon", 600, domain.PriorityHigh, nil)
		handler := newRunPreviewHandler(newFakeTasks(task), newFakeBlocks(), preview.NewMemoryStore())

		session, err := handler.Handle(ctx, RunPreviewCommand{
			UserID:     userID,
			RangeStart: monday,
			RangeEnd:   monday.AddDate(0, 0, 1),
		})
		require.NoError(t, err)

		assert.Empty(t, session.Result.Blocks)
		require.Len(t, session.Result.Unplaced, 1)
		assert.Equal(t, domain.ReasonNoCapacity, session.Result.Unplaced[0].Reason)
		assert.NotEmpty(t, session.Result.Suggestions)
	})

	t.Run("existing blocks are busy time and fence the fingerprint", func(t *testing.T) {
		busy, err := domain.NewScheduleBlock(userID, uuid.New(), mondayAt(9, 0), mondayAt(17, 0))
		require.NoError(t, err)

		task := mustTask(t, userID, "Squeezed out", 60, domain.PriorityHigh, nil)
		handler := newRunPreviewHandler(newFakeTasks(task), newFakeBlocks(busy), preview.NewMemoryStore())

		session, err := handler.Handle(ctx, RunPreviewCommand{
			UserID:     userID,
			RangeStart: monday,
			RangeEnd:   monday.AddDate(0, 0, 1),
		})
		require.NoError(t, err)

		assert.Empty(t, session.Result.Blocks)
		require.Len(t, session.Result.Unplaced, 1)
		assert.Equal(t, preview.Fingerprint([]*domain.ScheduleBlock{busy}), session.SnapshotHash)
	})

	t.Run("a new preview supersedes the old one", func(t *testing.T) {
		task := mustTask(t, userID, "Write report", 60, domain.PriorityHigh, nil)
		store := preview.NewMemoryStore()
		handler := newRunPreviewHandler(newFakeTasks(task), newFakeBlocks(), store)

		_, err := handler.Handle(ctx, RunPreviewCommand{
			UserID: userID, RangeStart: monday, RangeEnd: monday.AddDate(0, 0, 1),
		})
		require.NoError(t, err)

		second, err := handler.Handle(ctx, RunPreviewCommand{
			UserID: userID, RangeStart: monday, RangeEnd: monday.AddDate(0, 0, 7),
		})
		require.NoError(t, err)

		stored, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, second, stored)
		assert.Equal(t, monday.AddDate(0, 0, 7), stored.RangeEnd)
	})
}
