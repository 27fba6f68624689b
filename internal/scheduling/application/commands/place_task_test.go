package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
)

func newPlaceHandler(tasks *fakeTasks, blocks *fakeBlocks) *PlaceTaskHandler {
	logger := discardLogger()
	return NewPlaceTaskHandler(tasks, blocks, &fakeUnitOfWork{}, eventbus.NewInProcessBus(logger), logger)
}

func TestPlaceTaskHandler(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("places the task at the chosen time", func(t *testing.T) {
		task := mustTask(t, userID, "Write report", 90, domain.PriorityMedium, nil)
		blocks := newFakeBlocks()
		handler := newPlaceHandler(newFakeTasks(task), blocks)

		block, err := handler.Handle(ctx, PlaceTaskCommand{
			UserID: userID,
			TaskID: task.ID(),
			Start:  mondayAt(10, 0),
		})
		require.NoError(t, err)

		assert.Equal(t, mondayAt(10, 0), block.StartTime())
		assert.Equal(t, mondayAt(11, 30), block.EndTime())
		assert.Equal(t, domain.StatusScheduled, task.Status())

		saved, err := blocks.ListByTask(ctx, task.ID())
		require.NoError(t, err)
		assert.Len(t, saved, 1)
	})

	t.Run("outside working hours is allowed", func(t *testing.T) {
		task := mustTask(t, userID, "Late night", 60, domain.PriorityMedium, nil)
		handler := newPlaceHandler(newFakeTasks(task), newFakeBlocks())

		_, err := handler.Handle(ctx, PlaceTaskCommand{
			UserID: userID,
			TaskID: task.ID(),
			Start:  mondayAt(22, 0),
		})
		assert.NoError(t, err)
	})

	t.Run("overlap with an existing block is rejected", func(t *testing.T) {
		existing, err := domain.NewScheduleBlock(userID, uuid.New(), mondayAt(10, 0), mondayAt(11, 0))
		require.NoError(t, err)

		task := mustTask(t, userID, "Write report", 60, domain.PriorityMedium, nil)
		handler := newPlaceHandler(newFakeTasks(task), newFakeBlocks(existing))

		_, err = handler.Handle(ctx, PlaceTaskCommand{
			UserID: userID,
			TaskID: task.ID(),
			Start:  mondayAt(10, 30),
		})
		assert.ErrorIs(t, err, ErrPlacementConflict)
		assert.Equal(t, domain.StatusWaiting, task.Status())
	})

	t.Run("back-to-back placement is not a conflict", func(t *testing.T) {
		existing, err := domain.NewScheduleBlock(userID, uuid.New(), mondayAt(10, 0), mondayAt(11, 0))
		require.NoError(t, err)

		task := mustTask(t, userID, "Follow-up", 60, domain.PriorityMedium, nil)
		handler := newPlaceHandler(newFakeTasks(task), newFakeBlocks(existing))

		block, err := handler.Handle(ctx, PlaceTaskCommand{
			UserID: userID,
			TaskID: task.ID(),
			Start:  mondayAt(11, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, mondayAt(11, 0), block.StartTime())
	})

	t.Run("unknown task", func(t *testing.T) {
		handler := newPlaceHandler(newFakeTasks(), newFakeBlocks())

		_, err := handler.Handle(ctx, PlaceTaskCommand{
			UserID: userID,
			TaskID: uuid.New(),
			Start:  mondayAt(10, 0),
		})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}
