package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/shared/application"
	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
)

// ErrStalePreview means the calendar changed after the preview was
// computed. Nothing is committed; the session stays active so a retry can
// recompute over the same range.
var ErrStalePreview = errors.New("preview is stale: schedule changed since it was computed")

// ApplyPreviewCommand commits the user's active preview atomically.
type ApplyPreviewCommand struct {
	UserID uuid.UUID
}

func (c ApplyPreviewCommand) CommandName() string { return "scheduling.apply_preview" }

// ApplyPreviewHandler handles ApplyPreviewCommand.
type ApplyPreviewHandler struct {
	tasks     domain.TaskRepository
	blocks    domain.BlockRepository
	previews  preview.Store
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewApplyPreviewHandler creates an ApplyPreviewHandler.
func NewApplyPreviewHandler(
	tasks domain.TaskRepository,
	blocks domain.BlockRepository,
	previews preview.Store,
	uow application.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *ApplyPreviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplyPreviewHandler{
		tasks:     tasks,
		blocks:    blocks,
		previews:  previews,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle commits every proposed block and task transition in one
// transaction, or nothing. Before writing it re-reads the committed
// blocks and compares fingerprints: a mismatch means something else
// changed the calendar and the preview no longer reflects reality.
func (h *ApplyPreviewHandler) Handle(ctx context.Context, cmd ApplyPreviewCommand) (*preview.Session, error) {
	session, err := h.previews.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	var events []sharedDomain.DomainEvent

	err = application.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		current, err := h.blocks.ListByUserRange(txCtx, cmd.UserID, session.RangeStart, session.RangeEnd)
		if err != nil {
			return fmt.Errorf("failed to re-read schedule: %w", err)
		}
		if preview.Fingerprint(current) != session.SnapshotHash {
			return ErrStalePreview
		}

		// Sub-tasks first: blocks reference them.
		splitParents := make(map[uuid.UUID]bool)
		for _, sub := range session.Result.SubTasks {
			if err := sub.MarkScheduled(); err != nil {
				return fmt.Errorf("failed to schedule sub-task %s: %w", sub.ID(), err)
			}
			if err := h.tasks.Save(txCtx, sub); err != nil {
				return fmt.Errorf("failed to save sub-task %s: %w", sub.ID(), err)
			}
			events = append(events, sub.DomainEvents()...)
			sub.ClearDomainEvents()
			if parentID := sub.ParentID(); parentID != nil {
				splitParents[*parentID] = true
			}
		}

		for parentID := range splitParents {
			parent, err := h.tasks.FindByID(txCtx, parentID)
			if err != nil {
				return fmt.Errorf("failed to load split parent %s: %w", parentID, err)
			}
			if err := parent.ChangeStatus(domain.StatusSplit); err != nil {
				return fmt.Errorf("failed to mark task %s split: %w", parentID, err)
			}
			if err := h.tasks.Save(txCtx, parent); err != nil {
				return fmt.Errorf("failed to save split parent %s: %w", parentID, err)
			}
			events = append(events, parent.DomainEvents()...)
			parent.ClearDomainEvents()
		}

		// Whole-task placements transition their task directly.
		for _, block := range session.Result.Blocks {
			if block.IsSplit() {
				continue
			}
			task, err := h.tasks.FindByID(txCtx, block.TaskID())
			if err != nil {
				return fmt.Errorf("failed to load task %s: %w", block.TaskID(), err)
			}
			if err := task.MarkScheduled(); err != nil {
				return fmt.Errorf("failed to schedule task %s: %w", task.ID(), err)
			}
			if err := h.tasks.Save(txCtx, task); err != nil {
				return fmt.Errorf("failed to save task %s: %w", task.ID(), err)
			}
			events = append(events, task.DomainEvents()...)
			task.ClearDomainEvents()
		}

		if err := h.blocks.SaveBatch(txCtx, session.Result.Blocks); err != nil {
			return fmt.Errorf("failed to save blocks: %w", err)
		}
		return nil
	})
	if err != nil {
		// A stale session stays in the store so the caller can recover
		// with a retry over the same range; the retry's Put supersedes it.
		return nil, err
	}

	for _, block := range session.Result.Blocks {
		events = append(events, domain.NewBlockPlanned(cmd.UserID, block))
	}
	events = append(events, domain.NewPlanApplied(cmd.UserID, len(session.Result.Blocks), len(session.Result.Unplaced)))
	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, events)

	if err := h.previews.Delete(ctx, cmd.UserID); err != nil {
		h.logger.Warn("failed to delete applied preview", "user_id", cmd.UserID, "error", err)
	}

	h.logger.Info("preview applied",
		"user_id", cmd.UserID,
		"blocks", len(session.Result.Blocks),
		"sub_tasks", len(session.Result.SubTasks),
		"unplaced", len(session.Result.Unplaced),
	)

	return session, nil
}
