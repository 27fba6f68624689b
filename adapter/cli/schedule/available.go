package schedule

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/queries"
)

var (
	availableDate string
	availableMin  int
)

var availableCmd = &cobra.Command{
	Use:   "available",
	Short: "Show free slots for a day",
	Long: `Show the free working-time windows of a day that can fit at
least the given duration.

Examples:
  tempora schedule available
  tempora schedule available --date 2026-09-01 --min 60`,
	Aliases: []string{"slots"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.FindAvailableSlotsHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		date := time.Now().UTC()
		if availableDate != "" {
			parsed, err := time.Parse("2006-01-02", availableDate)
			if err != nil {
				return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
			}
			date = parsed.UTC()
		}

		windows, err := app.FindAvailableSlotsHandler.Handle(cmd.Context(), queries.FindAvailableSlotsQuery{
			UserID:      app.CurrentUserID,
			Date:        date,
			MinDuration: time.Duration(availableMin) * time.Minute,
		})
		if err != nil {
			return fmt.Errorf("failed to find available slots: %w", err)
		}

		fmt.Printf("Free slots on %s:\n", date.Format("Monday, January 2, 2006"))
		if len(windows) == 0 {
			fmt.Println("  None. The day is full or outside working hours.")
			return nil
		}
		for _, w := range windows {
			fmt.Printf("  %s - %s  (%dm)\n",
				w.Start.Format("15:04"),
				w.End.Format("15:04"),
				int(w.Duration().Minutes()),
			)
		}
		return nil
	},
}

func init() {
	availableCmd.Flags().StringVarP(&availableDate, "date", "d", "", "date to check (YYYY-MM-DD, default today)")
	availableCmd.Flags().IntVarP(&availableMin, "min", "m", 30, "minimum slot duration in minutes")
}
