package engine

import (
	"time"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
	"github.com/google/uuid"
)

// Outcome is the result of one placement pass.
type Outcome struct {
	Placed    []*domain.ScheduleBlock
	SubTasks  []*domain.Task
	Unplaced  []domain.UnplacedTask
	Remaining []domain.AvailabilityWindow
}

// Place assigns each task, in the given order, to the first chronological
// window that fits it and respects its deadline. Successful placements
// shrink the window in place. A task that fits no single window is split
// across windows when it exceeds cfg.AutoSplitThreshold and aggregate
// capacity suffices; otherwise it is reported unplaced with a conflict
// reason and left untouched.
func Place(userID uuid.UUID, ordered []*domain.Task, windows []domain.AvailabilityWindow, cfg Config) Outcome {
	out := Outcome{
		Placed:    make([]*domain.ScheduleBlock, 0, len(ordered)),
		Unplaced:  make([]domain.UnplacedTask, 0),
		Remaining: cloneWindows(windows),
	}

	for _, task := range ordered {
		duration := task.Duration()

		idx, fitsIgnoringDeadline := findWindow(out.Remaining, duration, task.Deadline())
		if idx >= 0 {
			w := &out.Remaining[idx]
			block, err := domain.NewScheduleBlock(userID, task.ID(), w.Start, w.Start.Add(duration))
			if err != nil {
				out.Unplaced = append(out.Unplaced, unplaced(task, domain.ReasonNoCapacity))
				continue
			}
			out.Placed = append(out.Placed, block)
			w.Start = w.Start.Add(duration)
			out.Remaining = dropEmpty(out.Remaining)
			continue
		}

		if duration > cfg.AutoSplitThreshold && domain.TotalAvailability(out.Remaining) >= duration {
			split, remaining, ok := Split(userID, task, out.Remaining, cfg)
			if ok {
				out.Placed = append(out.Placed, split.Blocks...)
				out.SubTasks = append(out.SubTasks, split.SubTasks...)
				out.Remaining = remaining
				continue
			}
			// Split clips windows to the deadline before carving, so a
			// failure that a deadline-free carve plan would avoid is a
			// deadline conflict, not missing capacity.
			if _, feasible := planCarves(duration, out.Remaining, cfg); feasible {
				fitsIgnoringDeadline = true
			}
		}

		reason := domain.ReasonNoCapacity
		if task.Deadline() != nil && fitsIgnoringDeadline {
			reason = domain.ReasonDeadlineUnreachable
		}
		out.Unplaced = append(out.Unplaced, unplaced(task, reason))
	}

	return out
}

// findWindow returns the index of the first window that fits the duration
// and, when a deadline is set, ends the placement no later than it. The
// second return reports whether some window would have fit with the
// deadline ignored, which distinguishes the two conflict reasons.
func findWindow(windows []domain.AvailabilityWindow, duration time.Duration, deadline *time.Time) (int, bool) {
	fitsAny := false
	for i, w := range windows {
		if !w.Fits(duration) {
			continue
		}
		fitsAny = true
		if deadline != nil && w.Start.Add(duration).After(*deadline) {
			continue
		}
		return i, true
	}
	return -1, fitsAny
}

func unplaced(task *domain.Task, reason domain.ConflictReason) domain.UnplacedTask {
	return domain.UnplacedTask{
		TaskID: task.ID(),
		Title:  task.Title(),
		Reason: reason,
	}
}

func cloneWindows(windows []domain.AvailabilityWindow) []domain.AvailabilityWindow {
	cloned := make([]domain.AvailabilityWindow, len(windows))
	copy(cloned, windows)
	return cloned
}

func dropEmpty(windows []domain.AvailabilityWindow) []domain.AvailabilityWindow {
	kept := windows[:0]
	for _, w := range windows {
		if w.Duration() > 0 {
			kept = append(kept, w)
		}
	}
	return kept
}
