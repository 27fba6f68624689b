package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
	"github.com/tempora-app/tempora/internal/scheduling/domain"
	sharedDomain "github.com/tempora-app/tempora/internal/shared/domain"
	"github.com/tempora-app/tempora/internal/shared/infrastructure/eventbus"
)

// CancelPreviewCommand discards the user's active preview without touching
// committed state.
type CancelPreviewCommand struct {
	UserID uuid.UUID
}

func (c CancelPreviewCommand) CommandName() string { return "scheduling.cancel_preview" }

// CancelPreviewHandler handles CancelPreviewCommand.
type CancelPreviewHandler struct {
	previews  preview.Store
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewCancelPreviewHandler creates a CancelPreviewHandler.
func NewCancelPreviewHandler(previews preview.Store, publisher eventbus.Publisher, logger *slog.Logger) *CancelPreviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CancelPreviewHandler{previews: previews, publisher: publisher, logger: logger}
}

// Handle drops the active session. Cancelling when none exists returns
// ErrNoActivePreview.
func (h *CancelPreviewHandler) Handle(ctx context.Context, cmd CancelPreviewCommand) error {
	session, err := h.previews.Get(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if err := h.previews.Delete(ctx, cmd.UserID); err != nil {
		return err
	}

	eventbus.PublishDomainEvents(ctx, h.publisher, h.logger, []sharedDomain.DomainEvent{
		domain.NewPlanDiscarded(cmd.UserID, len(session.Result.Blocks)),
	})

	h.logger.Info("preview cancelled", "user_id", cmd.UserID, "blocks", len(session.Result.Blocks))
	return nil
}
