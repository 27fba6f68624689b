package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
)

var placeAt string

var placeCmd = &cobra.Command{
	Use:   "place <task-id>",
	Short: "Place one task manually at a chosen time",
	Long: `Place a task at an explicit start time, bypassing automatic
placement. The slot is validated against existing blocks; overlaps are
rejected.

Examples:
  tempora schedule place 4f6c... --at "2026-09-01T14:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PlaceTaskHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		start, err := time.Parse("2006-01-02T15:04", placeAt)
		if err != nil {
			return fmt.Errorf("invalid time, use YYYY-MM-DDTHH:MM: %w", err)
		}

		block, err := app.PlaceTaskHandler.Handle(cmd.Context(), commands.PlaceTaskCommand{
			UserID: app.CurrentUserID,
			TaskID: taskID,
			Start:  start,
		})
		if errors.Is(err, commands.ErrPlacementConflict) {
			fmt.Println("That slot overlaps an existing block. Try 'tempora schedule available'.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to place task: %w", err)
		}

		fmt.Printf("Placed at %s - %s.\n",
			block.StartTime().Format("2006-01-02 15:04"),
			block.EndTime().Format("15:04"))
		return nil
	},
}

func init() {
	placeCmd.Flags().StringVarP(&placeAt, "at", "a", "", "start time (YYYY-MM-DDTHH:MM, UTC)")
	_ = placeCmd.MarkFlagRequired("at")
}
