package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempora-app/tempora/adapter/api"
	"github.com/tempora-app/tempora/pkg/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the scheduling API over HTTP until interrupted.

Examples:
  tempora serve
  tempora serve --addr :9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil {
			fmt.Println("The API server requires a configured database.")
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		addr := cfg.APIAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		handler := api.NewSchedulingHandler(
			a.RunPreviewHandler,
			a.ApplyPreviewHandler,
			a.CancelPreviewHandler,
			a.RetryPreviewHandler,
			a.PlaceTaskHandler,
			a.SweepMissedHandler,
			a.GetScheduleHandler,
			a.FindAvailableSlotsHandler,
			a.Previews,
			a.CurrentUserID,
			logger,
		)
		server := api.NewServer(addr, handler, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides TEMPORA_API_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
