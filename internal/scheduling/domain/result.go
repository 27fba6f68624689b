package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConflictReason explains why a task could not be placed.
type ConflictReason string

const (
	ReasonNoCapacity          ConflictReason = "no_capacity"
	ReasonDeadlineUnreachable ConflictReason = "deadline_unreachable"
)

// UnplacedTask records one task the engine could not place. Infeasibility is
// data in the result, never an error.
type UnplacedTask struct {
	TaskID uuid.UUID
	Title  string
	Reason ConflictReason
}

// SchedulingResult is the outcome of one scheduling run. It is ephemeral:
// held by the preview workflow until applied or discarded.
type SchedulingResult struct {
	Blocks         []*ScheduleBlock
	SubTasks       []*Task
	Unplaced       []UnplacedTask
	Suggestions    []string
	UtilizationPct float64
	ComputedAt     time.Time
}

// Success reports whether every task was placed.
func (r *SchedulingResult) Success() bool {
	return len(r.Unplaced) == 0
}

// ScheduledDuration sums the duration of all proposed blocks.
func (r *SchedulingResult) ScheduledDuration() time.Duration {
	total := time.Duration(0)
	for _, b := range r.Blocks {
		total += b.Duration()
	}
	return total
}
