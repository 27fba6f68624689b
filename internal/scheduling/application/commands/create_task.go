package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
)

// CreateTaskCommand adds a task to the user's waiting pool.
type CreateTaskCommand struct {
	UserID      uuid.UUID
	Title       string
	Category    string
	DurationMin int
	Priority    string
	Deadline    *time.Time
}

func (c CreateTaskCommand) CommandName() string { return "scheduling.create_task" }

// CreateTaskHandler handles CreateTaskCommand.
type CreateTaskHandler struct {
	tasks     domain.TaskRepository
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewCreateTaskHandler creates a CreateTaskHandler.
func NewCreateTaskHandler(tasks domain.TaskRepository, publisher eventbus.Publisher, logger *slog.Logger) *CreateTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateTaskHandler{tasks: tasks, publisher: publisher, logger: logger}
}

// Handle validates and persists the new task.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*domain.Task, error) {
	priority, err := domain.ParsePriority(cmd.Priority)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(cmd.UserID, cmd.Title, cmd.Category, cmd.DurationMin, priority, cmd.Deadline)
	if err != nil {
		return nil, err
	}

	if err := h.tasks.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, task.DomainEvents())
	task.ClearDomainEvents()

	h.logger.Info("task created",
		"task_id", task.ID(),
		"user_id", cmd.UserID,
		"title", task.Title(),
		"priority", task.Priority().String(),
		"duration_min", task.DurationMin(),
	)
	return task, nil
}
