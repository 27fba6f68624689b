package domain

import "time"

// Overlaps reports whether the half-open intervals [startA, endA) and
// [startB, endB) intersect. Touching endpoints do not overlap. This is the
// single conflict predicate used by availability computation and manual
// placement alike.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// AvailabilityWindow is a contiguous stretch of free working time on one
// calendar day. Windows are ephemeral values: computed per scheduling run,
// consumed by placement, never persisted.
type AvailabilityWindow struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window length.
func (w AvailabilityWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Date returns the window's calendar day (midnight, window's location).
func (w AvailabilityWindow) Date() time.Time {
	return time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
}

// Fits reports whether a task of duration d fits in the window.
func (w AvailabilityWindow) Fits(d time.Duration) bool {
	return w.Duration() >= d
}

// TotalAvailability sums the duration of all windows.
func TotalAvailability(windows []AvailabilityWindow) time.Duration {
	total := time.Duration(0)
	for _, w := range windows {
		total += w.Duration()
	}
	return total
}
