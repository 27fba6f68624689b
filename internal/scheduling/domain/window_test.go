package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	at := func(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

	tests := []struct {
		name                       string
		startA, endA, startB, endB time.Time
		want                       bool
	}{
		{"identical", at(0), at(60), at(0), at(60), true},
		{"partial overlap", at(0), at(60), at(30), at(90), true},
		{"contained", at(0), at(120), at(30), at(60), true},
		{"touching end-to-start", at(0), at(60), at(60), at(120), false},
		{"touching start-to-end", at(60), at(120), at(0), at(60), false},
		{"disjoint", at(0), at(30), at(90), at(120), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.startA, tt.endA, tt.startB, tt.endB))
			// The predicate is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.startB, tt.endB, tt.startA, tt.endA))
		})
	}
}

func TestTotalAvailability(t *testing.T) {
	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	windows := []AvailabilityWindow{
		{Start: base, End: base.Add(time.Hour)},
		{Start: base.Add(3 * time.Hour), End: base.Add(5 * time.Hour)},
	}

	assert.Equal(t, 3*time.Hour, TotalAvailability(windows))
	assert.Equal(t, time.Duration(0), TotalAvailability(nil))
}

func TestWindowFits(t *testing.T) {
	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	w := AvailabilityWindow{Start: base, End: base.Add(time.Hour)}

	assert.True(t, w.Fits(time.Hour))
	assert.True(t, w.Fits(30*time.Minute))
	assert.False(t, w.Fits(61*time.Minute))
}
