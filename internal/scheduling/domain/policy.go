package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidWorkingHours = errors.New("working hours start must be before end")
	ErrInvalidTimezone     = errors.New("unknown timezone")
)

// WorkingHoursPolicy describes when a user is willing to take scheduled
// work. Times are minutes from midnight in the policy's timezone.
type WorkingHoursPolicy struct {
	StartMinute int
	EndMinute   int
	Timezone    string
	Workdays    [7]bool // indexed by time.Weekday
}

// DefaultWorkingHoursPolicy returns a Monday-Friday 09:00-17:00 UTC policy.
func DefaultWorkingHoursPolicy() WorkingHoursPolicy {
	return WorkingHoursPolicy{
		StartMinute: 9 * 60,
		EndMinute:   17 * 60,
		Timezone:    "UTC",
		Workdays: [7]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
	}
}

// Validate rejects malformed policies at the boundary, before they reach
// the engine.
func (p WorkingHoursPolicy) Validate() error {
	if p.StartMinute >= p.EndMinute {
		return ErrInvalidWorkingHours
	}
	if p.StartMinute < 0 || p.EndMinute > 24*60 {
		return ErrInvalidWorkingHours
	}
	if _, err := p.Location(); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

// Location resolves the policy timezone.
func (p WorkingHoursPolicy) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.Timezone)
}

// IsWorkday reports whether the weekday is workable under this policy.
func (p WorkingHoursPolicy) IsWorkday(day time.Weekday) bool {
	return p.Workdays[day]
}

// DayWindow returns the working interval for the given calendar day as UTC
// instants. ok is false for non-working days and degenerate hours.
func (p WorkingHoursPolicy) DayWindow(date time.Time) (start, end time.Time, ok bool) {
	loc, err := p.Location()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	local := date.In(loc)
	if !p.IsWorkday(local.Weekday()) {
		return time.Time{}, time.Time{}, false
	}
	if p.StartMinute >= p.EndMinute {
		return time.Time{}, time.Time{}, false
	}

	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start = midnight.Add(time.Duration(p.StartMinute) * time.Minute).UTC()
	end = midnight.Add(time.Duration(p.EndMinute) * time.Minute).UTC()
	return start, end, true
}
