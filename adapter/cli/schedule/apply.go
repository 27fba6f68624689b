package schedule

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Commit the active preview to the calendar",
	Long: `Commit every block of the active preview in one transaction.
If the calendar changed since the preview was computed, the apply is
rejected; recompute over the same range with 'tempora schedule retry'.

Examples:
  tempora schedule apply`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ApplyPreviewHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		session, err := app.ApplyPreviewHandler.Handle(cmd.Context(), commands.ApplyPreviewCommand{
			UserID: app.CurrentUserID,
		})
		if errors.Is(err, preview.ErrNoActivePreview) {
			fmt.Println("No active preview. Run 'tempora schedule preview' first.")
			return nil
		}
		if errors.Is(err, commands.ErrStalePreview) {
			fmt.Println("The schedule changed since the preview was computed; nothing was applied.")
			fmt.Println("Run 'tempora schedule retry' to recompute over the same range.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to apply preview: %w", err)
		}

		fmt.Printf("Applied %d blocks", len(session.Result.Blocks))
		if len(session.Result.SubTasks) > 0 {
			fmt.Printf(" (%d split sub-tasks)", len(session.Result.SubTasks))
		}
		fmt.Println(".")
		if len(session.Result.Unplaced) > 0 {
			fmt.Printf("%d tasks remain unplaced; see 'tempora task list'.\n", len(session.Result.Unplaced))
		}
		return nil
	},
}
