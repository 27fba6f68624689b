package engine

import (
	"time"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/google/uuid"
)

// carve is one planned sub-block before materialization.
type carve struct {
	windowIdx int
	start     time.Time
	duration  time.Duration
}

// SplitPlacement holds the materialized pieces of one split task: ordered
// sub-tasks and the block placing each of them.
type SplitPlacement struct {
	SubTasks []*domain.Task
	Blocks   []*domain.ScheduleBlock
}

// Split carves a task that fits no single window into an ordered sequence
// of sub-blocks across windows, consuming availability chronologically.
// Every sub-block is at least cfg.MinChunk long: a final slice that would
// fall short is rebalanced backward into earlier carves. Each sub-block
// gets its own sub-task linked to the parent, so the split relationship is
// an explicit ordered list. Returns ok=false and the windows untouched when
// the task cannot be covered, including when its deadline caps usable
// availability.
func Split(userID uuid.UUID, task *domain.Task, windows []domain.AvailabilityWindow, cfg Config) (SplitPlacement, []domain.AvailabilityWindow, bool) {
	usable := cloneWindows(windows)
	if deadline := task.Deadline(); deadline != nil {
		usable = clipToDeadline(usable, *deadline)
	}

	carves, ok := planCarves(task.Duration(), usable, cfg)
	if !ok {
		return SplitPlacement{}, windows, false
	}

	remaining := cloneWindows(windows)
	placement := SplitPlacement{
		SubTasks: make([]*domain.Task, 0, len(carves)),
		Blocks:   make([]*domain.ScheduleBlock, 0, len(carves)),
	}
	for i, c := range carves {
		sub := domain.NewSubTask(task, i+1, len(carves), int(c.duration.Minutes()))
		block, err := domain.NewSplitBlock(
			userID, sub.ID(),
			c.start, c.start.Add(c.duration),
			i+1, len(carves),
			domain.SplitReasonAuto,
		)
		if err != nil {
			return SplitPlacement{}, windows, false
		}
		placement.SubTasks = append(placement.SubTasks, sub)
		placement.Blocks = append(placement.Blocks, block)
		remaining = consume(remaining, c.start, c.start.Add(c.duration))
	}

	return placement, remaining, true
}

// planCarves greedily fills windows until the task duration is covered,
// then rebalances so no carve is below the minimum chunk.
func planCarves(total time.Duration, windows []domain.AvailabilityWindow, cfg Config) ([]carve, bool) {
	remaining := total
	carves := make([]carve, 0)

	for i, w := range windows {
		if remaining <= 0 {
			break
		}
		capacity := w.Duration()
		if capacity < cfg.MinChunk {
			continue
		}

		take := capacity
		if remaining < take {
			take = remaining
		}
		carves = append(carves, carve{windowIdx: i, start: w.Start, duration: take})
		remaining -= take
	}

	if remaining > 0 {
		return nil, false
	}

	rebalanceTail(carves, windows, cfg.MinChunk)
	return carves, len(carves) > 0
}

// rebalanceTail shifts minutes from earlier carves into an undersized final
// carve so every sub-block meets the minimum chunk. Donor carves never drop
// below the minimum themselves, and the final carve never outgrows its
// window; if the deficit cannot be fully covered the small tail stays as
// the task's entire remainder.
func rebalanceTail(carves []carve, windows []domain.AvailabilityWindow, minChunk time.Duration) {
	if len(carves) < 2 {
		return
	}

	last := &carves[len(carves)-1]
	deficit := minChunk - last.duration
	if deficit <= 0 {
		return
	}
	if slack := windows[last.windowIdx].Duration() - last.duration; slack < deficit {
		deficit = slack
	}

	for i := len(carves) - 2; i >= 0 && deficit > 0; i-- {
		donor := &carves[i]
		spare := donor.duration - minChunk
		if spare <= 0 {
			continue
		}
		give := spare
		if deficit < give {
			give = deficit
		}
		donor.duration -= give
		last.duration += give
		deficit -= give
	}
}

// clipToDeadline trims every window so no sub-block can end past the
// deadline.
func clipToDeadline(windows []domain.AvailabilityWindow, deadline time.Time) []domain.AvailabilityWindow {
	clipped := make([]domain.AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		if !w.Start.Before(deadline) {
			continue
		}
		if w.End.After(deadline) {
			w.End = deadline
		}
		if w.Duration() > 0 {
			clipped = append(clipped, w)
		}
	}
	return clipped
}

// consume removes [start, end) from the window set.
func consume(windows []domain.AvailabilityWindow, start, end time.Time) []domain.AvailabilityWindow {
	result := make([]domain.AvailabilityWindow, 0, len(windows))
	for _, w := range windows {
		if !domain.Overlaps(w.Start, w.End, start, end) {
			result = append(result, w)
			continue
		}
		if w.Start.Before(start) {
			result = append(result, domain.AvailabilityWindow{Start: w.Start, End: start})
		}
		if w.End.After(end) {
			result = append(result, domain.AvailabilityWindow{Start: end, End: w.End})
		}
	}
	return result
}
