package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/blobrelay/internal/config"
	"github.com/roach88/blobrelay/internal/relay"
	"github.com/roach88/blobrelay/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP host bridge",
		Long: `Serve the record store over HTTP.

Routes:
  POST /api/records   store {"value": <json>}
  GET  /api/records   every record in key order
  POST /api/relay     emit one indexeddbData event to /api/events
  GET  /api/events    server-sent event stream of relays
  GET  /healthz       liveness
  GET  /metrics       Prometheus metrics

Examples:
  blobrelay serve
  blobrelay serve --addr :8080 --allowed-origins http://localhost:8501
  BLOBRELAY_DB=/data/records.db blobrelay serve`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}

	cmd.Flags().String(config.KeyAddr, config.DefaultAddr, "listen address")
	cmd.Flags().String(config.KeyAllowedOrigins, "", "comma-separated CORS origins")
	cmd.Flags().Int(config.KeyEventBuffer, config.DefaultEventBuffer, "per-subscriber event buffer")

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	conf := opts.Config
	logger := opts.Logger

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := relay.NewHub(conf.EventBuffer, logger)
	b, h := opts.openBridge(hub)
	defer func() {
		if err := h.Close(); err != nil {
			logger.Error("error closing record store", "error", err)
		}
	}()

	// Open eagerly so a bad database fails at startup instead of on first request
	if _, err := h.Open(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to open record store", err)
	}

	srv := server.New(b, hub, server.Options{
		Addr:           conf.Addr,
		AllowedOrigins: conf.AllowedOrigins,
		Logger:         logger,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", conf.DBPath, conf.Addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := srv.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("host bridge stopped gracefully")
	return nil
}
