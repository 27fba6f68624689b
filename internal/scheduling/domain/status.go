package domain

import "errors"

// Status represents the task lifecycle state.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusMissed     Status = "missed"
	StatusCompleted  Status = "completed"
	// StatusSplit marks a parent task whose duration has been carved into
	// sub-tasks; the sub-tasks carry the schedulable state.
	StatusSplit Status = "split"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// COMPLETED is terminal: no reopen transition is supported. MISSED mirrors
// WAITING for scheduling outcomes: a missed task re-enters the pending pool,
// so placement can move it to SCHEDULED or, for an oversized task, to SPLIT.
var allowedTransitions = map[Status][]Status{
	StatusWaiting:    {StatusScheduled, StatusInProgress, StatusCompleted, StatusSplit},
	StatusScheduled:  {StatusInProgress, StatusCompleted, StatusMissed},
	StatusInProgress: {StatusCompleted, StatusScheduled},
	StatusMissed:     {StatusWaiting, StatusScheduled, StatusSplit},
	StatusCompleted:  {},
	StatusSplit:      {StatusWaiting, StatusCompleted},
}

// CanTransitionTo reports whether the transition to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}
