package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingHoursPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  WorkingHoursPolicy
		wantErr error
	}{
		{"default is valid", DefaultWorkingHoursPolicy(), nil},
		{"start after end", WorkingHoursPolicy{StartMinute: 600, EndMinute: 540, Timezone: "UTC"}, ErrInvalidWorkingHours},
		{"start equals end", WorkingHoursPolicy{StartMinute: 540, EndMinute: 540, Timezone: "UTC"}, ErrInvalidWorkingHours},
		{"negative start", WorkingHoursPolicy{StartMinute: -30, EndMinute: 540, Timezone: "UTC"}, ErrInvalidWorkingHours},
		{"end past midnight", WorkingHoursPolicy{StartMinute: 540, EndMinute: 25 * 60, Timezone: "UTC"}, ErrInvalidWorkingHours},
		{"bad timezone", WorkingHoursPolicy{StartMinute: 540, EndMinute: 1020, Timezone: "Mars/Olympus"}, ErrInvalidTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDayWindow(t *testing.T) {
	policy := DefaultWorkingHoursPolicy()

	t.Run("workday", func(t *testing.T) {
		monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

		start, end, ok := policy.DayWindow(monday)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 8, 31, 17, 0, 0, 0, time.UTC), end)
	})

	t.Run("weekend yields no window", func(t *testing.T) {
		saturday := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

		_, _, ok := policy.DayWindow(saturday)
		assert.False(t, ok)
	})

	t.Run("timezone offset applies", func(t *testing.T) {
		policy := WorkingHoursPolicy{
			StartMinute: 9 * 60,
			EndMinute:   17 * 60,
			Timezone:    "America/New_York",
			Workdays:    DefaultWorkingHoursPolicy().Workdays,
		}

		// New York is UTC-4 in late August.
		monday := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

		start, end, ok := policy.DayWindow(monday)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 8, 31, 13, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC), end)
	})

	t.Run("empty timezone falls back to UTC", func(t *testing.T) {
		policy := WorkingHoursPolicy{
			StartMinute: 8 * 60,
			EndMinute:   12 * 60,
			Workdays:    DefaultWorkingHoursPolicy().Workdays,
		}

		tuesday := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		start, _, ok := policy.DayWindow(tuesday)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC), start)
	})
}
