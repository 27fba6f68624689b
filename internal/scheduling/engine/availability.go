package engine

import (
	"time"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

// ComputeAvailability returns the ordered free windows for a user between
// rangeStart and rangeEnd. Each working day in range is partitioned into
// slots of cfg.SlotDuration; a slot is free iff it lies inside the policy's
// working hours and overlaps no existing block. Adjacent free slots are
// coalesced into maximal windows.
//
// Pure function: safe to call repeatedly and discard.
func ComputeAvailability(
	policy domain.WorkingHoursPolicy,
	rangeStart, rangeEnd time.Time,
	busy []*domain.ScheduleBlock,
	cfg Config,
) []domain.AvailabilityWindow {
	windows := make([]domain.AvailabilityWindow, 0)
	if !rangeEnd.After(rangeStart) {
		return windows
	}

	loc, err := policy.Location()
	if err != nil {
		return windows
	}

	local := rangeStart.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	for day.Before(rangeEnd.In(loc)) {
		dayStart, dayEnd, ok := policy.DayWindow(day)
		if ok {
			// Clip the working day to the requested range.
			if dayStart.Before(rangeStart) {
				dayStart = rangeStart
			}
			if dayEnd.After(rangeEnd) {
				dayEnd = rangeEnd
			}
			windows = appendDayWindows(windows, dayStart, dayEnd, busy, cfg)
		}
		day = day.AddDate(0, 0, 1)
	}

	return windows
}

// appendDayWindows walks the slot grid of one working day and appends the
// coalesced free windows.
func appendDayWindows(
	windows []domain.AvailabilityWindow,
	dayStart, dayEnd time.Time,
	busy []*domain.ScheduleBlock,
	cfg Config,
) []domain.AvailabilityWindow {
	var open *domain.AvailabilityWindow

	for slotStart := dayStart; slotStart.Add(cfg.SlotDuration).Before(dayEnd) || slotStart.Add(cfg.SlotDuration).Equal(dayEnd); slotStart = slotStart.Add(cfg.SlotDuration) {
		slotEnd := slotStart.Add(cfg.SlotDuration)

		if slotBusy(slotStart, slotEnd, busy) {
			if open != nil {
				windows = append(windows, *open)
				open = nil
			}
			continue
		}

		if open != nil && open.End.Equal(slotStart) {
			open.End = slotEnd
		} else {
			if open != nil {
				windows = append(windows, *open)
			}
			open = &domain.AvailabilityWindow{Start: slotStart, End: slotEnd}
		}
	}

	if open != nil {
		windows = append(windows, *open)
	}
	return windows
}

func slotBusy(start, end time.Time, busy []*domain.ScheduleBlock) bool {
	for _, b := range busy {
		if domain.Overlaps(start, end, b.StartTime(), b.EndTime()) {
			return true
		}
	}
	return false
}
