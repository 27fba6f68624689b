package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/queries"
)

var (
	showDate string
	showDays int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the committed schedule",
	Long: `Display your committed blocks for a date range.

Examples:
  tempora schedule show
  tempora schedule show --date 2026-09-01 --days 7`,
	Aliases: []string{"view"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetScheduleHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		var start time.Time
		if showDate != "" {
			parsed, err := time.Parse("2006-01-02", showDate)
			if err != nil {
				return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
			}
			start = parsed.UTC()
		} else {
			now := time.Now().UTC()
			start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		}
		days := showDays
		if days <= 0 {
			days = 1
		}
		end := start.AddDate(0, 0, days)

		entries, err := app.GetScheduleHandler.Handle(cmd.Context(), queries.GetScheduleQuery{
			UserID:     app.CurrentUserID,
			RangeStart: start,
			RangeEnd:   end,
		})
		if err != nil {
			return fmt.Errorf("failed to get schedule: %w", err)
		}

		fmt.Printf("Schedule %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
		fmt.Println(strings.Repeat("=", 60))

		if len(entries) == 0 {
			fmt.Println("\n  No committed blocks in range.")
			fmt.Println("\n  Use 'tempora schedule preview' to plan your tasks.")
			return nil
		}

		total := 0
		for _, entry := range entries {
			status := "[ ]"
			if entry.Block.IsCompleted() {
				status = "[x]"
			}
			tag := ""
			if s := entry.Block.Split(); s != nil {
				tag = fmt.Sprintf("  [part %d/%d]", s.Part, s.Total)
			}
			fmt.Printf("%s %s  %s - %s  %s (%dm)%s\n",
				status,
				entry.Block.StartTime().Format("Mon 2006-01-02"),
				entry.Block.StartTime().Format("15:04"),
				entry.Block.EndTime().Format("15:04"),
				entry.Task.Title(),
				int(entry.Block.Duration().Minutes()),
				tag,
			)
			total += int(entry.Block.Duration().Minutes())
		}

		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("Total: %d blocks, %dm scheduled\n", len(entries), total)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVarP(&showDate, "date", "d", "", "range start date (YYYY-MM-DD, default today)")
	showCmd.Flags().IntVarP(&showDays, "days", "n", 1, "number of days to show")
}
