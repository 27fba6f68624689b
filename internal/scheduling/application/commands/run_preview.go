// Package commands implements the state-changing operations of the
// scheduling context: preview runs, apply/cancel/retry, manual placement,
// and the missed-task sweep.
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
	"github.com/tempora-app/tempora/internal/scheduling/engine"
)

var ErrInvalidRange = errors.New("range end must be after range start")

// RunPreviewCommand computes a scheduling draft for a user over a time
// range. The draft replaces any existing preview; committed state is not
// touched.
type RunPreviewCommand struct {
	UserID     uuid.UUID
	RangeStart time.Time
	RangeEnd   time.Time
}

func (c RunPreviewCommand) CommandName() string { return "scheduling.run_preview" }

// RunPreviewHandler handles RunPreviewCommand.
type RunPreviewHandler struct {
	tasks    domain.TaskRepository
	blocks   domain.BlockRepository
	policies domain.PolicyProvider
	previews preview.Store
	cfg      engine.Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewRunPreviewHandler creates a RunPreviewHandler.
func NewRunPreviewHandler(
	tasks domain.TaskRepository,
	blocks domain.BlockRepository,
	policies domain.PolicyProvider,
	previews preview.Store,
	cfg engine.Config,
	logger *slog.Logger,
) *RunPreviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunPreviewHandler{
		tasks:    tasks,
		blocks:   blocks,
		policies: policies,
		previews: previews,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle computes availability, orders pending tasks, places them, and
// stores the result as the user's active preview session. Unplaceable
// tasks are reported in the result, never as an error.
func (h *RunPreviewHandler) Handle(ctx context.Context, cmd RunPreviewCommand) (*preview.Session, error) {
	start := h.now()

	if !cmd.RangeEnd.After(cmd.RangeStart) {
		return nil, ErrInvalidRange
	}

	policy, err := h.policies.WorkingHours(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working hours: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid working hours policy: %w", err)
	}

	pending, err := h.tasks.ListPending(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}

	busy, err := h.blocks.ListByUserRange(ctx, cmd.UserID, cmd.RangeStart, cmd.RangeEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing blocks: %w", err)
	}

	windows := engine.ComputeAvailability(policy, cmd.RangeStart, cmd.RangeEnd, busy, h.cfg)
	capacity := domain.TotalAvailability(windows)

	ordered := engine.Order(pending)
	outcome := engine.Place(cmd.UserID, ordered, windows, h.cfg)

	result := &domain.SchedulingResult{
		Blocks:     outcome.Placed,
		SubTasks:   outcome.SubTasks,
		Unplaced:   outcome.Unplaced,
		ComputedAt: h.now(),
	}
	if capacity > 0 {
		result.UtilizationPct = float64(result.ScheduledDuration()) / float64(capacity) * 100
	}
	result.Suggestions = buildSuggestions(outcome.Unplaced)

	session := &preview.Session{
		UserID:       cmd.UserID,
		Result:       result,
		RangeStart:   cmd.RangeStart,
		RangeEnd:     cmd.RangeEnd,
		SnapshotHash: preview.Fingerprint(busy),
		CreatedAt:    h.now(),
	}
	if err := h.previews.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store preview: %w", err)
	}

	h.logger.Info("preview computed",
		"user_id", cmd.UserID,
		"range_start", cmd.RangeStart,
		"range_end", cmd.RangeEnd,
		"placed", len(result.Blocks),
		"unplaced", len(result.Unplaced),
		"utilization_pct", result.UtilizationPct,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return session, nil
}

// buildSuggestions derives advisory hints from the conflict reasons.
func buildSuggestions(unplaced []domain.UnplacedTask) []string {
	var suggestions []string
	capacityHit, deadlineHit := false, false
	for _, u := range unplaced {
		switch u.Reason {
		case domain.ReasonNoCapacity:
			capacityHit = true
		case domain.ReasonDeadlineUnreachable:
			deadlineHit = true
		}
	}
	if capacityHit {
		suggestions = append(suggestions, "not enough free time in range: widen the range, extend working hours, or complete existing blocks")
	}
	if deadlineHit {
		suggestions = append(suggestions, "some deadlines fall before any free slot large enough: move the deadline or clear earlier blocks")
	}
	return suggestions
}
