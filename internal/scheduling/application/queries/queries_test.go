package queries

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/scheduling/engine"
)

func mondayAt(h, m int) time.Time {
	return time.Date(2026, 8, 31, h, m, 0, 0, time.UTC)
}

// stubTasks is a read-only TaskRepository over a fixed slice.
type stubTasks struct {
	tasks []*domain.Task
}

func (s stubTasks) Save(context.Context, *domain.Task) error { return nil }

func (s stubTasks) FindByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	for _, t := range s.tasks {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (s stubTasks) ListPending(_ context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.UserID() == userID && (t.Status() == domain.StatusWaiting || t.Status() == domain.StatusMissed) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s stubTasks) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.UserID() == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s stubTasks) ListByParent(_ context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.ParentID() != nil && *t.ParentID() == parentID {
			out = append(out, t)
		}
	}
	return out, nil
}

// stubBlocks is a read-only BlockRepository over a fixed slice.
type stubBlocks struct {
	blocks []*domain.ScheduleBlock
}

func (s stubBlocks) Save(context.Context, *domain.ScheduleBlock) error        { return nil }
func (s stubBlocks) SaveBatch(context.Context, []*domain.ScheduleBlock) error { return nil }
func (s stubBlocks) DeleteByTask(context.Context, uuid.UUID) error            { return nil }

func (s stubBlocks) ListByUserRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.ScheduleBlock, error) {
	var out []*domain.ScheduleBlock
	for _, b := range s.blocks {
		if b.UserID() == userID && domain.Overlaps(b.StartTime(), b.EndTime(), start, end) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime().Before(out[j].StartTime()) })
	return out, nil
}

func (s stubBlocks) ListOpenEndedBefore(_ context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.ScheduleBlock, error) {
	var out []*domain.ScheduleBlock
	for _, b := range s.blocks {
		if b.UserID() == userID && !b.IsCompleted() && b.EndTime().Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s stubBlocks) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.ScheduleBlock, error) {
	var out []*domain.ScheduleBlock
	for _, b := range s.blocks {
		if b.TaskID() == taskID {
			out = append(out, b)
		}
	}
	return out, nil
}

type stubPolicies struct {
	policy domain.WorkingHoursPolicy
}

func (s stubPolicies) WorkingHours(context.Context, uuid.UUID) (domain.WorkingHoursPolicy, error) {
	return s.policy, nil
}

func TestGetScheduleHandler(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	task, err := domain.NewTask(userID, "Write report", "", 60, domain.PriorityHigh, nil)
	require.NoError(t, err)
	early, err := domain.NewScheduleBlock(userID, task.ID(), mondayAt(9, 0), mondayAt(10, 0))
	require.NoError(t, err)
	late, err := domain.NewScheduleBlock(userID, task.ID(), mondayAt(14, 0), mondayAt(15, 0))
	require.NoError(t, err)

	handler := NewGetScheduleHandler(
		stubTasks{tasks: []*domain.Task{task}},
		stubBlocks{blocks: []*domain.ScheduleBlock{late, early}},
	)

	t.Run("joins blocks with their tasks in order", func(t *testing.T) {
		entries, err := handler.Handle(ctx, GetScheduleQuery{
			UserID:     userID,
			RangeStart: mondayAt(0, 0),
			RangeEnd:   mondayAt(23, 59),
		})
		require.NoError(t, err)

		require.Len(t, entries, 2)
		assert.Equal(t, early.ID(), entries[0].Block.ID())
		assert.Equal(t, late.ID(), entries[1].Block.ID())
		assert.Equal(t, task.ID(), entries[0].Task.ID())
	})

	t.Run("range filters blocks", func(t *testing.T) {
		entries, err := handler.Handle(ctx, GetScheduleQuery{
			UserID:     userID,
			RangeStart: mondayAt(0, 0),
			RangeEnd:   mondayAt(12, 0),
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, early.ID(), entries[0].Block.ID())
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		_, err := handler.Handle(ctx, GetScheduleQuery{
			UserID:     userID,
			RangeStart: mondayAt(12, 0),
			RangeEnd:   mondayAt(9, 0),
		})
		assert.Error(t, err)
	})
}

func TestFindAvailableSlotsHandler(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	policy := stubPolicies{policy: domain.DefaultWorkingHoursPolicy()}

	t.Run("returns the day's free windows", func(t *testing.T) {
		busy, err := domain.NewScheduleBlock(userID, uuid.New(), mondayAt(10, 0), mondayAt(12, 0))
		require.NoError(t, err)

		handler := NewFindAvailableSlotsHandler(
			stubBlocks{blocks: []*domain.ScheduleBlock{busy}},
			policy,
			engine.DefaultConfig(),
		)

		windows, err := handler.Handle(ctx, FindAvailableSlotsQuery{
			UserID: userID,
			Date:   mondayAt(0, 0),
		})
		require.NoError(t, err)

		require.Len(t, windows, 2)
		assert.Equal(t, mondayAt(9, 0), windows[0].Start)
		assert.Equal(t, mondayAt(10, 0), windows[0].End)
		assert.Equal(t, mondayAt(12, 0), windows[1].Start)
	})

	t.Run("filters windows below the minimum duration", func(t *testing.T) {
		busy, err := domain.NewScheduleBlock(userID, uuid.New(), mondayAt(10, 0), mondayAt(12, 0))
		require.NoError(t, err)

		handler := NewFindAvailableSlotsHandler(
			stubBlocks{blocks: []*domain.ScheduleBlock{busy}},
			policy,
			engine.DefaultConfig(),
		)

		windows, err := handler.Handle(ctx, FindAvailableSlotsQuery{
			UserID:      userID,
			Date:        mondayAt(0, 0),
			MinDuration: 2 * time.Hour,
		})
		require.NoError(t, err)

		// Only the 12:00-17:00 window can fit two hours.
		require.Len(t, windows, 1)
		assert.Equal(t, mondayAt(12, 0), windows[0].Start)
	})

	t.Run("non-working day has no slots", func(t *testing.T) {
		handler := NewFindAvailableSlotsHandler(stubBlocks{}, policy, engine.DefaultConfig())

		windows, err := handler.Handle(ctx, FindAvailableSlotsQuery{
			UserID: userID,
			Date:   time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), // Saturday
		})
		require.NoError(t, err)
		assert.Empty(t, windows)
	})
}

func TestListTasksHandler(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	waiting, err := domain.NewTask(userID, "Waiting", "", 60, domain.PriorityMedium, nil)
	require.NoError(t, err)
	scheduled, err := domain.NewTask(userID, "Scheduled", "", 60, domain.PriorityMedium, nil)
	require.NoError(t, err)
	require.NoError(t, scheduled.MarkScheduled())
	other, err := domain.NewTask(uuid.New(), "Someone else's", "", 60, domain.PriorityMedium, nil)
	require.NoError(t, err)

	handler := NewListTasksHandler(stubTasks{tasks: []*domain.Task{waiting, scheduled, other}})

	t.Run("all tasks for the user", func(t *testing.T) {
		tasks, err := handler.Handle(ctx, ListTasksQuery{UserID: userID})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("filtered by status", func(t *testing.T) {
		status := domain.StatusScheduled
		tasks, err := handler.Handle(ctx, ListTasksQuery{UserID: userID, Status: &status})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, scheduled.ID(), tasks[0].ID())
	})
}
