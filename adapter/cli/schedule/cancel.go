package schedule

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Discard the active preview",
	Long: `Discard the active preview. Committed blocks are untouched and
tasks stay in the waiting pool.

Examples:
  tempora schedule cancel`,
	Aliases: []string{"discard"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelPreviewHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		err := app.CancelPreviewHandler.Handle(cmd.Context(), commands.CancelPreviewCommand{
			UserID: app.CurrentUserID,
		})
		if errors.Is(err, preview.ErrNoActivePreview) {
			fmt.Println("No active preview to cancel.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to cancel preview: %w", err)
		}

		fmt.Println("Preview discarded.")
		return nil
	},
}
