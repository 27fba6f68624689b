package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input string
		want  Priority
	}{
		{"urgent", PriorityUrgent},
		{"HIGH", PriorityHigh},
		{"Medium", PriorityMedium},
		{"low", PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePriority(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}

	t.Run("unknown value", func(t *testing.T) {
		_, err := ParsePriority("critical")
		assert.ErrorIs(t, err, ErrInvalidPriority)
	})
}

func TestPriorityBoosted(t *testing.T) {
	assert.Equal(t, PriorityUrgent, PriorityUrgent.Boosted())
	assert.Equal(t, PriorityUrgent, PriorityHigh.Boosted())
	assert.Equal(t, PriorityHigh, PriorityMedium.Boosted())
	assert.Equal(t, PriorityMedium, PriorityLow.Boosted())
}

func TestPriorityOrdering(t *testing.T) {
	// Urgent sorts first.
	assert.Less(t, PriorityUrgent.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
}
