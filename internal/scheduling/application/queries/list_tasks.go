package queries

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

// ListTasksQuery fetches a user's tasks, optionally filtered by status.
type ListTasksQuery struct {
	UserID uuid.UUID
	Status *domain.Status
}

func (q ListTasksQuery) QueryName() string { return "scheduling.list_tasks" }

// ListTasksHandler handles ListTasksQuery.
type ListTasksHandler struct {
	tasks domain.TaskRepository
}

// NewListTasksHandler creates a ListTasksHandler.
func NewListTasksHandler(tasks domain.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{tasks: tasks}
}

// Handle returns the tasks, filtered in memory when a status is given.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]*domain.Task, error) {
	all, err := h.tasks.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if query.Status == nil {
		return all, nil
	}

	filtered := make([]*domain.Task, 0, len(all))
	for _, t := range all {
		if t.Status() == *query.Status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}
