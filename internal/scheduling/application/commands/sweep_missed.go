package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/scheduling/engine"
	"github.com/tempora-app/tempora/internal/shared/application"
	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
)

// SweepMissedCommand marks tasks whose scheduled block passed uncompleted
// as missed. A grace period after block end is tolerated before the task
// counts as missed.
type SweepMissedCommand struct {
	UserID uuid.UUID
	Now    time.Time
}

func (c SweepMissedCommand) CommandName() string { return "scheduling.sweep_missed" }

// SweepMissedHandler handles SweepMissedCommand.
type SweepMissedHandler struct {
	tasks     domain.TaskRepository
	blocks    domain.BlockRepository
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	cfg       engine.Config
	logger    *slog.Logger
}

// NewSweepMissedHandler creates a SweepMissedHandler.
func NewSweepMissedHandler(
	tasks domain.TaskRepository,
	blocks domain.BlockRepository,
	uow application.UnitOfWork,
	publisher eventbus.Publisher,
	cfg engine.Config,
	logger *slog.Logger,
) *SweepMissedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepMissedHandler{
		tasks:     tasks,
		blocks:    blocks,
		uow:       uow,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Handle returns how many tasks were newly marked missed. Tasks already
// in progress or completed are left alone; the missed transition only
// applies from the scheduled state.
func (h *SweepMissedHandler) Handle(ctx context.Context, cmd SweepMissedCommand) (int, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	cutoff := now.Add(-h.cfg.MissedGrace)

	expired, err := h.blocks.ListOpenEndedBefore(ctx, cmd.UserID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired blocks: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var events []sharedDomain.DomainEvent
	missed := 0

	err = application.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		seen := make(map[uuid.UUID]bool)
		for _, block := range expired {
			if seen[block.TaskID()] {
				continue
			}
			seen[block.TaskID()] = true

			task, err := h.tasks.FindByID(txCtx, block.TaskID())
			if err != nil {
				return fmt.Errorf("failed to load task %s: %w", block.TaskID(), err)
			}

			if err := task.ChangeStatus(domain.StatusMissed); err != nil {
				if errors.Is(err, domain.ErrInvalidTransition) {
					continue
				}
				return err
			}
			if err := h.tasks.Save(txCtx, task); err != nil {
				return fmt.Errorf("failed to save task %s: %w", task.ID(), err)
			}

			events = append(events, task.DomainEvents()...)
			task.ClearDomainEvents()
			events = append(events, domain.NewTaskMissed(task.ID(), block.ID(), block.EndTime()))
			missed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, events)

	if missed > 0 {
		h.logger.Info("missed sweep completed",
			"user_id", cmd.UserID,
			"missed", missed,
			"cutoff", cutoff,
		)
	}
	return missed, nil
}
