package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrBlockTooShort    = errors.New("block is below the minimum chunk size")
)

// SplitReason records why a block is a fragment of a larger task.
type SplitReason string

const (
	SplitReasonAuto     SplitReason = "auto-split"
	SplitReasonUser     SplitReason = "user-split"
	SplitReasonConflict SplitReason = "time-conflict"
)

// SplitDescriptor tags a block that covers one part of a split task.
type SplitDescriptor struct {
	Part   int
	Total  int
	Reason SplitReason
}

// ScheduleBlock is a concrete placement of a task (or a split part of it)
// on the calendar.
type ScheduleBlock struct {
	sharedDomain.BaseEntity
	userID    uuid.UUID
	taskID    uuid.UUID
	startTime time.Time
	endTime   time.Time
	completed bool
	split     *SplitDescriptor
}

// NewScheduleBlock creates a block placing taskID at [start, end).
func NewScheduleBlock(userID, taskID uuid.UUID, start, end time.Time) (*ScheduleBlock, error) {
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}

	return &ScheduleBlock{
		BaseEntity: sharedDomain.NewBaseEntity(),
		userID:     userID,
		taskID:     taskID,
		startTime:  start.UTC(),
		endTime:    end.UTC(),
	}, nil
}

// NewSplitBlock creates a block covering one part of a split task.
func NewSplitBlock(userID, taskID uuid.UUID, start, end time.Time, part, total int, reason SplitReason) (*ScheduleBlock, error) {
	block, err := NewScheduleBlock(userID, taskID, start, end)
	if err != nil {
		return nil, err
	}
	block.split = &SplitDescriptor{Part: part, Total: total, Reason: reason}
	return block, nil
}

// Getters
func (b *ScheduleBlock) UserID() uuid.UUID      { return b.userID }
func (b *ScheduleBlock) TaskID() uuid.UUID      { return b.taskID }
func (b *ScheduleBlock) StartTime() time.Time   { return b.startTime }
func (b *ScheduleBlock) EndTime() time.Time     { return b.endTime }
func (b *ScheduleBlock) IsCompleted() bool      { return b.completed }
func (b *ScheduleBlock) Split() *SplitDescriptor { return b.split }
func (b *ScheduleBlock) IsSplit() bool          { return b.split != nil }

// Duration returns the block duration.
func (b *ScheduleBlock) Duration() time.Duration {
	return b.endTime.Sub(b.startTime)
}

// OverlapsWith checks if this block overlaps another.
func (b *ScheduleBlock) OverlapsWith(other *ScheduleBlock) bool {
	return Overlaps(b.startTime, b.endTime, other.startTime, other.endTime)
}

// MarkCompleted marks the block as completed.
func (b *ScheduleBlock) MarkCompleted() {
	b.completed = true
	b.Touch()
}

// IsPast reports whether the block ended more than grace before now.
func (b *ScheduleBlock) IsPast(now time.Time, grace time.Duration) bool {
	return now.After(b.endTime.Add(grace))
}

// RehydrateScheduleBlock recreates a block from persisted state.
func RehydrateScheduleBlock(
	id uuid.UUID,
	userID, taskID uuid.UUID,
	start, end time.Time,
	completed bool,
	split *SplitDescriptor,
	createdAt, updatedAt time.Time,
) *ScheduleBlock {
	return &ScheduleBlock{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:     userID,
		taskID:     taskID,
		startTime:  start,
		endTime:    end,
		completed:  completed,
		split:      split,
	}
}
