package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

func TestSplit(t *testing.T) {
	userID := uuid.New()
	cfg := DefaultConfig()

	t.Run("even split across two windows", func(t *testing.T) {
		task := newTask(t, "Spike", 300, domain.PriorityHigh, nil)
		windows := []domain.AvailabilityWindow{
			window(mondayAt(9, 0), mondayAt(11, 30)),
			window(mondayAt(13, 0), mondayAt(15, 30)),
		}

		placement, remaining, ok := Split(userID, task, windows, cfg)
		require.True(t, ok)

		require.Len(t, placement.Blocks, 2)
		require.Len(t, placement.SubTasks, 2)
		assert.Empty(t, remaining)

		for i, sub := range placement.SubTasks {
			assert.Equal(t, i+1, sub.SplitIndex())
			assert.Equal(t, 2, sub.SplitTotal())
			require.NotNil(t, sub.ParentID())
			assert.Equal(t, task.ID(), *sub.ParentID())
			assert.Equal(t, task.Title(), sub.Title())
		}
	})

	t.Run("undersized tail is rebalanced backward", func(t *testing.T) {
		task := newTask(t, "Long haul", 310, domain.PriorityHigh, nil)
		windows := []domain.AvailabilityWindow{
			window(mondayAt(9, 0), mondayAt(14, 0)),  // 300 min
			window(mondayAt(15, 0), mondayAt(16, 0)), // 60 min
		}

		placement, _, ok := Split(userID, task, windows, cfg)
		require.True(t, ok)
		require.Len(t, placement.Blocks, 2)

		// Greedy carving would leave a 10-minute tail; the first carve
		// donates 20 minutes so the tail reaches the minimum chunk.
		assert.Equal(t, mondayAt(9, 0), placement.Blocks[0].StartTime())
		assert.Equal(t, mondayAt(13, 40), placement.Blocks[0].EndTime())
		assert.Equal(t, mondayAt(15, 0), placement.Blocks[1].StartTime())
		assert.Equal(t, mondayAt(15, 30), placement.Blocks[1].EndTime())

		assert.Equal(t, 280, placement.SubTasks[0].DurationMin())
		assert.Equal(t, 30, placement.SubTasks[1].DurationMin())
	})

	t.Run("windows below the minimum chunk are skipped", func(t *testing.T) {
		task := newTask(t, "Spike", 300, domain.PriorityHigh, nil)
		windows := []domain.AvailabilityWindow{
			window(mondayAt(8, 30), mondayAt(8, 50)), // 20 min, unusable
			window(mondayAt(9, 0), mondayAt(12, 0)),
			window(mondayAt(13, 0), mondayAt(16, 0)),
		}

		placement, remaining, ok := Split(userID, task, windows, cfg)
		require.True(t, ok)

		require.Len(t, placement.Blocks, 2)
		assert.Equal(t, mondayAt(9, 0), placement.Blocks[0].StartTime())

		// The unusable sliver and the leftover of the second carve survive.
		require.Len(t, remaining, 2)
		assert.Equal(t, mondayAt(8, 30), remaining[0].Start)
		assert.Equal(t, mondayAt(15, 0), remaining[1].Start)
		assert.Equal(t, mondayAt(16, 0), remaining[1].End)
	})

	t.Run("insufficient capacity fails and leaves windows untouched", func(t *testing.T) {
		task := newTask(t, "Spike", 300, domain.PriorityHigh, nil)
		windows := []domain.AvailabilityWindow{
			window(mondayAt(9, 0), mondayAt(11, 0)),
			window(mondayAt(13, 0), mondayAt(14, 0)),
		}

		placement, remaining, ok := Split(userID, task, windows, cfg)

		assert.False(t, ok)
		assert.Empty(t, placement.Blocks)
		assert.Equal(t, windows, remaining)
	})

	t.Run("deadline caps usable availability", func(t *testing.T) {
		deadline := mondayAt(14, 0)
		task := newTask(t, "Spike", 300, domain.PriorityHigh, &deadline)
		windows := []domain.AvailabilityWindow{
			window(mondayAt(9, 0), mondayAt(12, 0)),  // 180 min
			window(mondayAt(13, 0), mondayAt(17, 0)), // only 60 usable
		}

		_, _, ok := Split(userID, task, windows, cfg)
		assert.False(t, ok)
	})

	t.Run("split completes within the deadline when capacity allows", func(t *testing.T) {
		deadline := mondayAt(16, 0)
		task := newTask(t, "Spike", 300, domain.PriorityHigh, &deadline)
		windows := []domain.AvailabilityWindow{
			window(mondayAt(9, 0), mondayAt(12, 0)),
			window(mondayAt(13, 0), mondayAt(17, 0)),
		}

		placement, _, ok := Split(userID, task, windows, cfg)
		require.True(t, ok)
		require.Len(t, placement.Blocks, 2)

		for _, block := range placement.Blocks {
			assert.False(t, block.EndTime().After(deadline))
		}
	})

	t.Run("sub-task minutes sum to the parent duration", func(t *testing.T) {
		task := newTask(t, "Spike", 290, domain.PriorityHigh, nil)
		windows := []domain.AvailabilityWindow{
			window(mondayAt(9, 0), mondayAt(11, 0)),
			window(mondayAt(12, 0), mondayAt(13, 30)),
			window(mondayAt(14, 0), mondayAt(17, 0)),
		}

		placement, _, ok := Split(userID, task, windows, cfg)
		require.True(t, ok)

		total := 0
		for _, sub := range placement.SubTasks {
			total += sub.DurationMin()
			assert.GreaterOrEqual(t, sub.DurationMin(), domain.MinChunkMinutes)
		}
		assert.Equal(t, task.DurationMin(), total)
	})
}
