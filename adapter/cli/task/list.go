package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/queries"
	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tasks",
	Long: `List your tasks, optionally filtered by status.

Examples:
  tempora task list
  tempora task list --status waiting`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			fmt.Println("Task management requires a configured database.")
			return nil
		}

		query := queries.ListTasksQuery{UserID: app.CurrentUserID}
		if listStatus != "" {
			status := domain.Status(listStatus)
			if !status.IsValid() {
				return fmt.Errorf("unknown status %q", listStatus)
			}
			query.Status = &status
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks. Add one with 'tempora task add'.")
			return nil
		}

		fmt.Printf("%-36s  %-8s  %-11s  %5s  %s\n", "ID", "PRIORITY", "STATUS", "MINS", "TITLE")
		fmt.Println(strings.Repeat("-", 80))
		for _, t := range tasks {
			title := t.Title()
			if t.IsSubTask() {
				title = fmt.Sprintf("%s (part %d/%d)", title, t.SplitIndex(), t.SplitTotal())
			}
			deadline := ""
			if d := t.Deadline(); d != nil {
				deadline = "  due " + d.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-36s  %-8s  %-11s  %5d  %s%s\n",
				t.ID(), t.Priority(), t.Status(), t.DurationMin(), title, deadline)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (waiting, scheduled, in_progress, missed, completed, split)")
}
