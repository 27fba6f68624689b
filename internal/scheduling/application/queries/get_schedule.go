// Package queries implements the read-side operations of the scheduling
// context.
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

// GetScheduleQuery fetches a user's committed blocks over a range.
type GetScheduleQuery struct {
	UserID     uuid.UUID
	RangeStart time.Time
	RangeEnd   time.Time
}

func (q GetScheduleQuery) QueryName() string { return "scheduling.get_schedule" }

// ScheduleEntry pairs a block with its task for display.
type ScheduleEntry struct {
	Block *domain.ScheduleBlock
	Task  *domain.Task
}

// GetScheduleHandler handles GetScheduleQuery.
type GetScheduleHandler struct {
	tasks  domain.TaskRepository
	blocks domain.BlockRepository
}

// NewGetScheduleHandler creates a GetScheduleHandler.
func NewGetScheduleHandler(tasks domain.TaskRepository, blocks domain.BlockRepository) *GetScheduleHandler {
	return &GetScheduleHandler{tasks: tasks, blocks: blocks}
}

// Handle returns the blocks in range, ordered by start time, each joined
// with its task.
func (h *GetScheduleHandler) Handle(ctx context.Context, query GetScheduleQuery) ([]ScheduleEntry, error) {
	if !query.RangeEnd.After(query.RangeStart) {
		return nil, errors.New("range end must be after range start")
	}

	blocks, err := h.blocks.ListByUserRange(ctx, query.UserID, query.RangeStart, query.RangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	entries := make([]ScheduleEntry, 0, len(blocks))
	for _, block := range blocks {
		task, err := h.tasks.FindByID(ctx, block.TaskID())
		if err != nil {
			return nil, fmt.Errorf("failed to load task %s: %w", block.TaskID(), err)
		}
		entries = append(entries, ScheduleEntry{Block: block, Task: task})
	}
	return entries, nil
}
