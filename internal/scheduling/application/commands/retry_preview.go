package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
)

// RetryPreviewCommand discards the active preview and recomputes one over
// the same range. Placement is deterministic, so a retry differs only when
// the underlying tasks, blocks, or policy changed.
type RetryPreviewCommand struct {
	UserID uuid.UUID
}

func (c RetryPreviewCommand) CommandName() string { return "scheduling.retry_preview" }

// RetryPreviewHandler handles RetryPreviewCommand.
type RetryPreviewHandler struct {
	run    *RunPreviewHandler
	cancel *CancelPreviewHandler
	store  preview.Store
	logger *slog.Logger
}

// NewRetryPreviewHandler creates a RetryPreviewHandler.
func NewRetryPreviewHandler(run *RunPreviewHandler, cancel *CancelPreviewHandler, store preview.Store, logger *slog.Logger) *RetryPreviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryPreviewHandler{run: run, cancel: cancel, store: store, logger: logger}
}

// Handle re-runs the active preview's range.
func (h *RetryPreviewHandler) Handle(ctx context.Context, cmd RetryPreviewCommand) (*preview.Session, error) {
	prior, err := h.store.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := h.cancel.Handle(ctx, CancelPreviewCommand{UserID: cmd.UserID}); err != nil && !errors.Is(err, preview.ErrNoActivePreview) {
		return nil, err
	}

	return h.run.Handle(ctx, RunPreviewCommand{
		UserID:     cmd.UserID,
		RangeStart: prior.RangeStart,
		RangeEnd:   prior.RangeEnd,
	})
}
