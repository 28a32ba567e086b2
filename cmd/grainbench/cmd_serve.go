package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/grainchain/grainbench/internal/webapi"
	"github.com/grainchain/grainbench/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var (
		allowRemote bool
		origins     []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Start an HTTP server exposing the analysis as JSON.

Endpoints:
  GET /api/health
  GET /api/runs
  GET /api/overview?days=
  GET /api/compare?a=&b=&days=
  GET /api/trends?provider=&days=&metric=
  GET /api/regressions?baseline_days=&comparison_days=&threshold=
  GET /api/recommend?use_case=&days=
  GET /metrics            Prometheus metrics

The server listens on 127.0.0.1 unless --allow-remote is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			port := intFlag(cmd, "port", a.cfg.Server.Port)
			remote := a.cfg.RemoteAllowed()
			if cmd.Flags().Changed("allow-remote") {
				remote = allowRemote
			}

			webapi.Version = version
			srv, err := webserver.New(webserver.Config{
				Port:        port,
				AllowRemote: remote,
				Store:       a.store,
				Comparator:  a.cmp,
				Defaults: webapi.Defaults{
					TimeRangeDays:  a.cfg.Analysis.TimeRangeDays,
					BaselineDays:   a.cfg.Analysis.BaselineDays,
					ComparisonDays: a.cfg.Analysis.ComparisonDays,
					Threshold:      a.cfg.Threshold(),
				},
				AllowedOrigins: origins,
				Logger:         slog.Default(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.ErrOrStderr(), "grainbench API listening on http://%s\n", srv.Addr())
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default from config, 8787)")
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false,
		"Bind to all interfaces (WARNING: exposes the API to the network with no authentication)")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "Allow cross-origin requests from these origins")

	return cmd
}
