// Package schedule holds the CLI commands for the preview/apply workflow
// and the committed calendar.
package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan and manage your time blocks",
	Long:  `Preview, apply, and inspect automatic placements of your tasks into working time.`,
}

func init() {
	Cmd.AddCommand(previewCmd)
	Cmd.AddCommand(applyCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(retryCmd)
	Cmd.AddCommand(placeCmd)
	Cmd.AddCommand(sweepCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(availableCmd)
}
