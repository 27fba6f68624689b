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

// StartTaskCommand moves a task to in-progress.
type StartTaskCommand struct {
	TaskID uuid.UUID
}

func (c StartTaskCommand) CommandName() string { return "scheduling.start_task" }

// CompleteTaskCommand moves a task to completed and closes its blocks.
type CompleteTaskCommand struct {
	TaskID uuid.UUID
}

func (c CompleteTaskCommand) CommandName() string { return "scheduling.complete_task" }

// TransitionTaskHandler handles the simple lifecycle commands that move a
// single task through the state machine.
type TransitionTaskHandler struct {
	tasks     domain.TaskRepository
	blocks    domain.BlockRepository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewTransitionTaskHandler creates a TransitionTaskHandler.
func NewTransitionTaskHandler(
	tasks domain.TaskRepository,
	blocks domain.BlockRepository,
	uow application.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *TransitionTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransitionTaskHandler{tasks: tasks, blocks: blocks, uow: uow, publisher: publisher, logger: logger}
}

// HandleStart transitions the task to in-progress.
func (h *TransitionTaskHandler) HandleStart(ctx context.Context, cmd StartTaskCommand) error {
	task, err := h.tasks.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if err := task.ChangeStatus(domain.StatusInProgress); err != nil {
		return err
	}
	if err := h.tasks.Save(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, task.DomainEvents())
	task.ClearDomainEvents()
	return nil
}

// HandleComplete transitions the task to completed and marks its blocks
// completed in the same transaction.
func (h *TransitionTaskHandler) HandleComplete(ctx context.Context, cmd CompleteTaskCommand) error {
	var events []sharedDomain.DomainEvent

	err := application.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		task, err := h.tasks.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}
		if err := task.ChangeStatus(domain.StatusCompleted); err != nil {
			return err
		}
		if err := h.tasks.Save(txCtx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		events = append(events, task.DomainEvents()...)
		task.ClearDomainEvents()

		taskBlocks, err := h.blocks.ListByTask(txCtx, cmd.TaskID)
		if err != nil {
			return fmt.Errorf("failed to list blocks: %w", err)
		}
		for _, block := range taskBlocks {
			if block.IsCompleted() {
				continue
			}
			block.MarkCompleted()
			if err := h.blocks.Save(txCtx, block); err != nil {
				return fmt.Errorf("failed to save block %s: %w", block.ID(), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, events)
	h.logger.Info("task completed", "task_id", cmd.TaskID)
	return nil
}
