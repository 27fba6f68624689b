// Package task holds the CLI commands for managing the task pool.
package task

import (
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage your task pool",
	Long:  `Add, list, and transition the tasks the scheduler places for you.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(unscheduleCmd)
}
