package task

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
)

var (
	addDuration int
	addPriority string
	addCategory string
	addDeadline string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task to the waiting pool",
	Long: `Add a task. The scheduler places it on the next preview run.

Examples:
  tempora task add "Write report" --duration 90 --priority high
  tempora task add "Review PRs" -t 60 -p medium --deadline 2026-09-05T17:00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			fmt.Println("Task management requires a configured database.")
			return nil
		}

		var deadline *time.Time
		if addDeadline != "" {
			parsed, err := time.Parse("2006-01-02T15:04", addDeadline)
			if err != nil {
				return fmt.Errorf("invalid deadline, use YYYY-MM-DDTHH:MM: %w", err)
			}
			utc := parsed.UTC()
			deadline = &utc
		}

		task, err := app.CreateTaskHandler.Handle(cmd.Context(), commands.CreateTaskCommand{
			UserID:      app.CurrentUserID,
			Title:       args[0],
			Category:    addCategory,
			DurationMin: addDuration,
			Priority:    addPriority,
			Deadline:    deadline,
		})
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		fmt.Printf("Added %q (%dm, %s priority). ID: %s\n",
			task.Title(), task.DurationMin(), task.Priority(), task.ID())
		return nil
	},
}

func init() {
	addCmd.Flags().IntVarP(&addDuration, "duration", "t", 30, "estimated duration in minutes")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "priority (urgent, high, medium, low)")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "task category")
	addCmd.Flags().StringVarP(&addDeadline, "deadline", "D", "", "deadline (YYYY-MM-DDTHH:MM, UTC)")
}
