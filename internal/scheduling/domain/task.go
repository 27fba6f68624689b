package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle    = errors.New("task title cannot be empty")
	ErrDurationShort = errors.New("task duration is below the minimum chunk size")
)

// MinChunkMinutes is the minimum viable duration for a task or a split
// sub-block.
const MinChunkMinutes = 30

// Task represents a unit of work to be placed on the calendar.
type Task struct {
	sharedDomain.BaseAggregateRoot
	userID        uuid.UUID
	title         string
	category      string
	durationMin   int
	priority      Priority
	deadline      *time.Time
	status        Status
	priorityBoost bool
	parentID      *uuid.UUID
	splitIndex    int
	splitTotal    int
}

// NewTask creates a new task in the waiting state.
func NewTask(userID uuid.UUID, title, category string, durationMin int, priority Priority, deadline *time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if durationMin < MinChunkMinutes {
		return nil, ErrDurationShort
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	t := &Task{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		category:          strings.TrimSpace(category),
		durationMin:       durationMin,
		priority:          priority,
		deadline:          deadline,
		status:            StatusWaiting,
	}

	t.AddDomainEvent(NewTaskCreated(t.ID(), t.title, t.priority.String()))

	return t, nil
}

// Getters

func (t *Task) UserID() uuid.UUID    { return t.userID }
func (t *Task) Title() string        { return t.title }
func (t *Task) Category() string     { return t.category }
func (t *Task) DurationMin() int     { return t.durationMin }
func (t *Task) Priority() Priority   { return t.priority }
func (t *Task) Deadline() *time.Time { return t.deadline }
func (t *Task) Status() Status       { return t.status }
func (t *Task) HasBoost() bool       { return t.priorityBoost }
func (t *Task) ParentID() *uuid.UUID { return t.parentID }
func (t *Task) SplitIndex() int      { return t.splitIndex }
func (t *Task) SplitTotal() int      { return t.splitTotal }
func (t *Task) IsSubTask() bool      { return t.parentID != nil }

// Duration returns the estimated duration as a time.Duration.
func (t *Task) Duration() time.Duration {
	return time.Duration(t.durationMin) * time.Minute
}

// EffectivePriority returns the priority used for ordering, accounting for
// an unconsumed missed-task boost.
func (t *Task) EffectivePriority() Priority {
	if t.priorityBoost {
		return t.priority.Boosted()
	}
	return t.priority
}

// ChangeStatus moves the task to the next lifecycle state. Any transition
// not in the state table fails with ErrInvalidTransition and leaves the
// task unchanged.
func (t *Task) ChangeStatus(next Status) error {
	if !next.IsValid() {
		return ErrInvalidTransition
	}
	if !t.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	prev := t.status
	t.status = next
	switch next {
	case StatusMissed:
		// A missed task gets a one-time priority boost the next time it
		// re-enters scheduling.
		t.priorityBoost = true
	case StatusSplit:
		// Splitting is a successful placement of the parent through its
		// sub-tasks, so it consumes the boost just like MarkScheduled.
		t.priorityBoost = false
	}
	t.Touch()

	t.AddDomainEvent(NewTaskStatusChanged(t.ID(), prev, next))

	return nil
}

// MarkScheduled transitions the task to scheduled and consumes any pending
// priority boost.
func (t *Task) MarkScheduled() error {
	if err := t.ChangeStatus(StatusScheduled); err != nil {
		return err
	}
	t.priorityBoost = false
	return nil
}

// Unschedule reverts a scheduled task to the waiting pool after its
// blocks are removed. This is the inverse of MarkScheduled, not a
// lifecycle transition request: it only applies to a task that is
// currently scheduled and has done no work yet.
func (t *Task) Unschedule() error {
	if t.status != StatusScheduled {
		return ErrInvalidTransition
	}
	t.status = StatusWaiting
	t.Touch()
	t.AddDomainEvent(NewTaskStatusChanged(t.ID(), StatusScheduled, StatusWaiting))
	return nil
}

// SetDeadline updates the deadline.
func (t *Task) SetDeadline(deadline *time.Time) {
	t.deadline = deadline
	t.Touch()
}

// SetPriority updates the priority.
func (t *Task) SetPriority(priority Priority) error {
	if !priority.IsValid() {
		return ErrInvalidPriority
	}
	t.priority = priority
	t.Touch()
	return nil
}

// NewSubTask creates one sub-task of a split parent. The sub-task inherits
// the parent's category, priority, and deadline. Chunk sizing is the
// splitter's responsibility: a sub-task may carry the task's small final
// remainder when no merge candidate exists.
func NewSubTask(parent *Task, index, total, durationMin int) *Task {
	parentID := parent.ID()

	sub := &Task{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            parent.userID,
		title:             parent.title,
		category:          parent.category,
		durationMin:       durationMin,
		priority:          parent.priority,
		deadline:          parent.deadline,
		status:            StatusWaiting,
		parentID:          &parentID,
		splitIndex:        index,
		splitTotal:        total,
	}
	return sub
}

// RehydrateTask recreates a task from persisted state.
func RehydrateTask(
	id uuid.UUID,
	userID uuid.UUID,
	title, category string,
	durationMin int,
	priority Priority,
	deadline *time.Time,
	status Status,
	priorityBoost bool,
	parentID *uuid.UUID,
	splitIndex, splitTotal int,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		userID:            userID,
		title:             title,
		category:          category,
		durationMin:       durationMin,
		priority:          priority,
		deadline:          deadline,
		status:            status,
		priorityBoost:     priorityBoost,
		parentID:          parentID,
		splitIndex:        splitIndex,
		splitTotal:        splitTotal,
	}
}
