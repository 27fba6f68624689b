package engine

import (
	"sort"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

// Order sorts tasks into the deterministic placement sequence:
//  1. effective priority rank (urgent first, missed-task boost applied)
//  2. deadline: earlier first, tasks without a deadline last
//  3. creation time: most recently created first
//  4. task ID, lexical, as a final total-order tie-break
//
// The input slice is not modified.
func Order(tasks []*domain.Task) []*domain.Task {
	sorted := make([]*domain.Task, len(tasks))
	copy(sorted, tasks)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		rankA, rankB := a.EffectivePriority().Rank(), b.EffectivePriority().Rank()
		if rankA != rankB {
			return rankA < rankB
		}

		dlA, dlB := a.Deadline(), b.Deadline()
		if (dlA == nil) != (dlB == nil) {
			return dlA != nil
		}
		if dlA != nil && dlB != nil && !dlA.Equal(*dlB) {
			return dlA.Before(*dlB)
		}

		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}

		return a.ID().String() < b.ID().String()
	})

	return sorted
}
