package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
)

var (
	previewFrom string
	previewDays int
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute a scheduling draft without committing it",
	Long: `Compute where your pending tasks would land in the coming days.
Nothing is written to the calendar until you apply the preview.

Examples:
  tempora schedule preview
  tempora schedule preview --from 2026-09-01 --days 5`,
	Aliases: []string{"plan"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RunPreviewHandler == nil {
			fmt.Println("Scheduling requires a configured database.")
			return nil
		}

		rangeStart, rangeEnd, err := parsePreviewRange(previewFrom, previewDays)
		if err != nil {
			return err
		}

		session, err := app.RunPreviewHandler.Handle(cmd.Context(), commands.RunPreviewCommand{
			UserID:     app.CurrentUserID,
			RangeStart: rangeStart,
			RangeEnd:   rangeEnd,
		})
		if err != nil {
			return fmt.Errorf("failed to compute preview: %w", err)
		}

		printSession(session)
		fmt.Println("\nRun 'tempora schedule apply' to commit, or 'tempora schedule cancel' to discard.")
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewFrom, "from", "f", "", "range start date (YYYY-MM-DD, default today)")
	previewCmd.Flags().IntVarP(&previewDays, "days", "n", 7, "number of days to schedule into")
}

func parsePreviewRange(from string, days int) (time.Time, time.Time, error) {
	var start time.Time
	if from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
		}
		start = parsed.UTC()
	} else {
		now := time.Now().UTC()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if days <= 0 {
		days = 7
	}
	return start, start.AddDate(0, 0, days), nil
}

func printSession(session *preview.Session) {
	result := session.Result

	fmt.Printf("Preview %s to %s\n",
		session.RangeStart.Format("2006-01-02"),
		session.RangeEnd.Format("2006-01-02"))
	fmt.Println(strings.Repeat("=", 60))

	if len(result.Blocks) == 0 {
		fmt.Println("\n  Nothing to place: no pending tasks or no free time.")
	}

	for _, block := range result.Blocks {
		tag := ""
		if s := block.Split(); s != nil {
			tag = fmt.Sprintf("  [part %d/%d]", s.Part, s.Total)
		}
		fmt.Printf("  %s  %s - %s  (%dm)%s\n",
			block.StartTime().Format("Mon 2006-01-02"),
			block.StartTime().Format("15:04"),
			block.EndTime().Format("15:04"),
			int(block.Duration().Minutes()),
			tag,
		)
	}

	if len(result.Unplaced) > 0 {
		fmt.Println("\nCould not place:")
		for _, u := range result.Unplaced {
			fmt.Printf("  - %s (%s)\n", u.Title, u.Reason)
		}
	}
	for _, s := range result.Suggestions {
		fmt.Printf("\nHint: %s\n", s)
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Placed: %d blocks | Unplaced: %d | Utilization: %.0f%%\n",
		len(result.Blocks), len(result.Unplaced), result.UtilizationPct)
}
