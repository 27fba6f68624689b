package domain

import (
	"time"

	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	TaskAggregateType = "Task"
	PlanAggregateType = "Plan"

	RoutingKeyTaskCreated       = "scheduling.task.created"
	RoutingKeyTaskStatusChanged = "scheduling.task.status_changed"
	RoutingKeyTaskMissed        = "scheduling.task.missed"
	RoutingKeyBlockPlanned      = "scheduling.block.planned"
	RoutingKeyPlanApplied       = "scheduling.plan.applied"
	RoutingKeyPlanDiscarded     = "scheduling.plan.discarded"
)

// TaskCreated is emitted when a new task enters the system.
type TaskCreated struct {
	sharedDomain.BaseEvent
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID uuid.UUID, title, priority string) TaskCreated {
	return TaskCreated{
		BaseEvent: sharedDomain.NewBaseEvent(taskID, TaskAggregateType, RoutingKeyTaskCreated),
		Title:     title,
		Priority:  priority,
	}
}

// TaskStatusChanged is emitted on every validated lifecycle transition.
type TaskStatusChanged struct {
	sharedDomain.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

// NewTaskStatusChanged creates a TaskStatusChanged event.
func NewTaskStatusChanged(taskID uuid.UUID, from, to Status) TaskStatusChanged {
	return TaskStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(taskID, TaskAggregateType, RoutingKeyTaskStatusChanged),
		From:      from.String(),
		To:        to.String(),
	}
}

// TaskMissed is emitted when the missed sweep marks a task missed.
type TaskMissed struct {
	sharedDomain.BaseEvent
	BlockID  uuid.UUID `json:"block_id"`
	BlockEnd time.Time `json:"block_end"`
}

// NewTaskMissed creates a TaskMissed event.
func NewTaskMissed(taskID, blockID uuid.UUID, blockEnd time.Time) TaskMissed {
	return TaskMissed{
		BaseEvent: sharedDomain.NewBaseEvent(taskID, TaskAggregateType, RoutingKeyTaskMissed),
		BlockID:   blockID,
		BlockEnd:  blockEnd,
	}
}

// BlockPlanned is emitted for each block committed by an apply.
type BlockPlanned struct {
	sharedDomain.BaseEvent
	BlockID   uuid.UUID `json:"block_id"`
	TaskID    uuid.UUID `json:"task_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	SplitPart int       `json:"split_part,omitempty"`
}

// NewBlockPlanned creates a BlockPlanned event.
func NewBlockPlanned(userID uuid.UUID, block *ScheduleBlock) BlockPlanned {
	part := 0
	if block.IsSplit() {
		part = block.Split().Part
	}
	return BlockPlanned{
		BaseEvent: sharedDomain.NewBaseEvent(userID, PlanAggregateType, RoutingKeyBlockPlanned),
		BlockID:   block.ID(),
		TaskID:    block.TaskID(),
		StartTime: block.StartTime(),
		EndTime:   block.EndTime(),
		SplitPart: part,
	}
}

// PlanApplied is emitted once when a preview is committed.
type PlanApplied struct {
	sharedDomain.BaseEvent
	BlockCount    int `json:"block_count"`
	UnplacedCount int `json:"unplaced_count"`
}

// NewPlanApplied creates a PlanApplied event.
func NewPlanApplied(userID uuid.UUID, blockCount, unplacedCount int) PlanApplied {
	return PlanApplied{
		BaseEvent:     sharedDomain.NewBaseEvent(userID, PlanAggregateType, RoutingKeyPlanApplied),
		BlockCount:    blockCount,
		UnplacedCount: unplacedCount,
	}
}

// PlanDiscarded is emitted when a preview is cancelled or superseded.
type PlanDiscarded struct {
	sharedDomain.BaseEvent
	BlockCount int `json:"block_count"`
}

// NewPlanDiscarded creates a PlanDiscarded event.
func NewPlanDiscarded(userID uuid.UUID, blockCount int) PlanDiscarded {
	return PlanDiscarded{
		BaseEvent:  sharedDomain.NewBaseEvent(userID, PlanAggregateType, RoutingKeyPlanDiscarded),
		BlockCount: blockCount,
	}
}
