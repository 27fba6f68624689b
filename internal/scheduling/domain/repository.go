package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrBlockNotFound = errors.New("schedule block not found")
)

// TaskRepository defines the interface for task persistence.
type TaskRepository interface {
	// Save persists a task (create or update).
	Save(ctx context.Context, task *Task) error

	// FindByID finds a task by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// ListPending returns a user's tasks eligible for scheduling
	// (waiting and missed), ordered by creation time.
	ListPending(ctx context.Context, userID uuid.UUID) ([]*Task, error)

	// ListByUser returns all of a user's tasks, ordered by creation time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error)

	// ListByParent returns the ordered sub-tasks of a split parent.
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*Task, error)
}

// BlockRepository defines the interface for schedule block persistence.
type BlockRepository interface {
	// SaveBatch persists all blocks, or none on failure.
	SaveBatch(ctx context.Context, blocks []*ScheduleBlock) error

	// Save persists a single block.
	Save(ctx context.Context, block *ScheduleBlock) error

	// ListByUserRange returns a user's blocks intersecting [start, end),
	// ordered by start time.
	ListByUserRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*ScheduleBlock, error)

	// ListOpenEndedBefore returns uncompleted blocks ending before cutoff.
	ListOpenEndedBefore(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]*ScheduleBlock, error)

	// ListByTask returns all blocks placing the given task.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*ScheduleBlock, error)

	// DeleteByTask removes all blocks that place the given task.
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
}

// PolicyProvider resolves a user's working-hours policy. Owned by the
// identity layer; the engine only consumes it.
type PolicyProvider interface {
	WorkingHours(ctx context.Context, userID uuid.UUID) (WorkingHoursPolicy, error)
}
