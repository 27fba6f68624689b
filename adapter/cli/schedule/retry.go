package schedule

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Recompute the active preview over the same range",
	Long: `Discard the active preview and compute a fresh one over the same
time range. Useful after changing tasks, deadlines, or working hours.

Examples:
  tempora schedule retry`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RetryPreviewHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		session, err := app.RetryPreviewHandler.Handle(cmd.Context(), commands.RetryPreviewCommand{
			UserID: app.CurrentUserID,
		})
		if errors.Is(err, preview.ErrNoActivePreview) {
			fmt.Println("No active preview to retry. Run 'tempora schedule preview' first.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retry preview: %w", err)
		}

		printSession(session)
		return nil
	},
}
