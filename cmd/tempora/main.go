package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tempora-app/tempora/adapter/cli"
	"github.com/tempora-app/tempora/adapter/cli/schedule"
	"github.com/tempora-app/tempora/adapter/cli/task"
	"github.com/tempora-app/tempora/pkg/config"
	"github.com/tempora-app/tempora/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	cli.SetLogger(logger)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app, err := cli.BuildApp(context.Background(), cfg, logger)
	if err != nil {
		// Commands degrade gracefully without a container; they print a
		// hint instead of scheduling.
		logger.Error("failed to initialize application", "error", err)
	} else {
		cli.SetApp(app)
		defer func() { _ = app.Close() }()
	}

	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(task.Cmd)

	cli.Execute()
}
