package task

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Mark a task as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TransitionTaskHandler == nil {
			fmt.Println("Task management requires a configured database.")
			return nil
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		err = app.TransitionTaskHandler.HandleStart(cmd.Context(), commands.StartTaskCommand{TaskID: taskID})
		if errors.Is(err, domain.ErrInvalidTransition) {
			fmt.Println("Task cannot be started from its current status.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to start task: %w", err)
		}

		fmt.Println("Task started.")
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task as completed",
	Long: `Mark a task completed. Its remaining blocks are closed as well.

Examples:
  tempora task complete 4f6c...`,
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TransitionTaskHandler == nil {
			fmt.Println("Task management requires a configured database.")
			return nil
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		err = app.TransitionTaskHandler.HandleComplete(cmd.Context(), commands.CompleteTaskCommand{TaskID: taskID})
		if errors.Is(err, domain.ErrInvalidTransition) {
			fmt.Println("Task cannot be completed from its current status.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		fmt.Println("Task completed.")
		return nil
	},
}

var unscheduleCmd = &cobra.Command{
	Use:   "unschedule <task-id>",
	Short: "Remove a task's blocks and return it to the pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UnscheduleTaskHandler == nil {
			fmt.Println("Task management requires a configured database.")
			return nil
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		err = app.UnscheduleTaskHandler.Handle(cmd.Context(), commands.UnscheduleTaskCommand{TaskID: taskID})
		if errors.Is(err, domain.ErrInvalidTransition) {
			fmt.Println("Only a scheduled task with no work started can be unscheduled.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to unschedule task: %w", err)
		}

		fmt.Println("Task returned to the waiting pool.")
		return nil
	},
}
