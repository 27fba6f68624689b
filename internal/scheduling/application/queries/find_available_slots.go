package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/tempora-app/tempora/internal/scheduling/engine"
)

// FindAvailableSlotsQuery returns the free windows of one day that can fit
// at least MinDuration.
type FindAvailableSlotsQuery struct {
	UserID      uuid.UUID
	Date        time.Time
	MinDuration time.Duration
}

func (q FindAvailableSlotsQuery) QueryName() string { return "scheduling.find_available_slots" }

// FindAvailableSlotsHandler handles FindAvailableSlotsQuery.
type FindAvailableSlotsHandler struct {
	blocks   domain.BlockRepository
	policies domain.PolicyProvider
	cfg      engine.Config
}

// NewFindAvailableSlotsHandler creates a FindAvailableSlotsHandler.
func NewFindAvailableSlotsHandler(blocks domain.BlockRepository, policies domain.PolicyProvider, cfg engine.Config) *FindAvailableSlotsHandler {
	return &FindAvailableSlotsHandler{blocks: blocks, policies: policies, cfg: cfg}
}

// Handle computes the day's availability and filters windows below the
// requested minimum duration.
func (h *FindAvailableSlotsHandler) Handle(ctx context.Context, query FindAvailableSlotsQuery) ([]domain.AvailabilityWindow, error) {
	policy, err := h.policies.WorkingHours(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working hours: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid working hours policy: %w", err)
	}

	dayStart := query.Date.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	busy, err := h.blocks.ListByUserRange(ctx, query.UserID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	windows := engine.ComputeAvailability(policy, dayStart, dayEnd, busy, h.cfg)

	minDuration := query.MinDuration
	if minDuration <= 0 {
		minDuration = h.cfg.MinChunk
	}

	fitting := make([]domain.AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		if w.Fits(minDuration) {
			fitting = append(fitting, w)
		}
	}
	return fitting, nil
}
