package schedule

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark overdue scheduled tasks as missed",
	Long: `Check for blocks that ended more than the grace period ago
without being completed and mark their tasks missed. Missed tasks get a
one-time priority boost on their next preview.

Examples:
  tempora schedule sweep`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SweepMissedHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		missed, err := app.SweepMissedHandler.Handle(cmd.Context(), commands.SweepMissedCommand{
			UserID: app.CurrentUserID,
			Now:    time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to sweep missed tasks: %w", err)
		}

		if missed == 0 {
			fmt.Println("Nothing overdue.")
			return nil
		}
		fmt.Printf("Marked %d tasks missed. They will be boosted in the next preview.\n", missed)
		return nil
	},
}
