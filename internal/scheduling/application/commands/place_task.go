package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/shared/application"
	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
)

// ErrPlacementConflict means the requested slot overlaps an existing block.
var ErrPlacementConflict = errors.New("requested slot overlaps an existing block")

// PlaceTaskCommand places one task manually at a chosen start time,
// bypassing the engine. The block runs for the task's full duration.
type PlaceTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	Start  time.Time
}

func (c PlaceTaskCommand) CommandName() string { return "scheduling.place_task" }

// PlaceTaskHandler handles PlaceTaskCommand.
type PlaceTaskHandler struct {
	tasks     domain.TaskRepository
	blocks    domain.BlockRepository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewPlaceTaskHandler creates a PlaceTaskHandler.
func NewPlaceTaskHandler(
	tasks domain.TaskRepository,
	blocks domain.BlockRepository,
	uow application.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *PlaceTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaceTaskHandler{tasks: tasks, blocks: blocks, uow: uow, publisher: publisher, logger: logger}
}

// Handle validates the slot against committed blocks and commits the
// placement with the task transition in one transaction. Manual placement
// may sit outside working hours; only overlap is rejected.
func (h *PlaceTaskHandler) Handle(ctx context.Context, cmd PlaceTaskCommand) (*domain.ScheduleBlock, error) {
	task, err := h.tasks.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	start := cmd.Start.UTC()
	end := start.Add(task.Duration())

	existing, err := h.blocks.ListByUserRange(ctx, cmd.UserID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check for conflicts: %w", err)
	}
	for _, b := range existing {
		if domain.Overlaps(start, end, b.StartTime(), b.EndTime()) {
			return nil, ErrPlacementConflict
		}
	}

	block, err := domain.NewScheduleBlock(cmd.UserID, task.ID(), start, end)
	if err != nil {
		return nil, err
	}

	var events []sharedDomain.DomainEvent
	err = application.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := task.MarkScheduled(); err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", task.ID(), err)
		}
		if err := h.tasks.Save(txCtx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		events = append(events, task.DomainEvents()...)
		task.ClearDomainEvents()

		if err := h.blocks.Save(txCtx, block); err != nil {
			return fmt.Errorf("failed to save block: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events = append(events, domain.NewBlockPlanned(cmd.UserID, block))
	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, events)

	h.logger.Info("task placed manually",
		"user_id", cmd.UserID,
		"task_id", cmd.TaskID,
		"start", start,
		"end", end,
	)
	return block, nil
}
