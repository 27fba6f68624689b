// Package engine implements the pure scheduling core: availability
// computation, task ordering, placement, and splitting. Every function is a
// deterministic function of its inputs; all I/O stays in the application
// layer.
package engine

import "time"

// Config contains the tunable knobs of the placement engine.
type Config struct {
	// SlotDuration is the granularity of the availability grid.
	SlotDuration time.Duration

	// MinChunk is the smallest viable sub-block a split may produce.
	MinChunk time.Duration

	// AutoSplitThreshold is the duration above which a task that fits no
	// single window is split across windows instead of rejected.
	AutoSplitThreshold time.Duration

	// MissedGrace is how long past a block's end the sweep waits before
	// marking its task missed.
	MissedGrace time.Duration
}

// DefaultConfig returns the canonical engine configuration.
func DefaultConfig() Config {
	return Config{
		SlotDuration:       30 * time.Minute,
		MinChunk:           30 * time.Minute,
		AutoSplitThreshold: 240 * time.Minute,
		MissedGrace:        30 * time.Minute,
	}
}
