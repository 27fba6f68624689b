package domain

import (
	"errors"
	"strings"
)

// Priority represents task urgency. Lower rank sorts first.
type Priority int

const (
	PriorityUrgent Priority = 1
	PriorityHigh   Priority = 2
	PriorityMedium Priority = 3
	PriorityLow    Priority = 4
)

var ErrInvalidPriority = errors.New("invalid priority value")

var priorityNames = map[Priority]string{
	PriorityUrgent: "urgent",
	PriorityHigh:   "high",
	PriorityMedium: "medium",
	PriorityLow:    "low",
}

var priorityValues = map[string]Priority{
	"urgent": PriorityUrgent,
	"high":   PriorityHigh,
	"medium": PriorityMedium,
	"low":    PriorityLow,
}

// ParsePriority creates a Priority from a string.
func ParsePriority(s string) (Priority, error) {
	p, ok := priorityValues[strings.ToLower(s)]
	if !ok {
		return PriorityMedium, ErrInvalidPriority
	}
	return p, nil
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the priority is a valid value.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// Boosted returns the priority bumped one rank toward urgent.
func (p Priority) Boosted() Priority {
	if p <= PriorityUrgent {
		return PriorityUrgent
	}
	return p - 1
}

// Rank returns the numeric sort rank (urgent first).
func (p Priority) Rank() int {
	return int(p)
}
