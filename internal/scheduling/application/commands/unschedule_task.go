package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/shared/application"
	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
)

// UnscheduleTaskCommand removes every block placing a task and returns the
// task to the waiting pool. Only a scheduled task with no work started can
// be unscheduled.
type UnscheduleTaskCommand struct {
	TaskID uuid.UUID
}

func (c UnscheduleTaskCommand) CommandName() string { return "scheduling.unschedule_task" }

// UnscheduleTaskHandler handles UnscheduleTaskCommand.
type UnscheduleTaskHandler struct {
	tasks     domain.TaskRepository
	blocks    domain.BlockRepository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewUnscheduleTaskHandler creates an UnscheduleTaskHandler.
func NewUnscheduleTaskHandler(
	tasks domain.TaskRepository,
	blocks domain.BlockRepository,
	uow application.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *UnscheduleTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnscheduleTaskHandler{tasks: tasks, blocks: blocks, uow: uow, publisher: publisher, logger: logger}
}

// Handle deletes the task's blocks and reverts it to waiting atomically.
func (h *UnscheduleTaskHandler) Handle(ctx context.Context, cmd UnscheduleTaskCommand) error {
	var events []sharedDomain.DomainEvent

	err := application.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		task, err := h.tasks.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}
		if err := task.Unschedule(); err != nil {
			return err
		}
		if err := h.blocks.DeleteByTask(txCtx, cmd.TaskID); err != nil {
			return fmt.Errorf("failed to delete blocks: %w", err)
		}
		if err := h.tasks.Save(txCtx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		events = append(events, task.DomainEvents()...)
		task.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, events)
	h.logger.Info("task unscheduled", "task_id", cmd.TaskID)
	return nil
}
