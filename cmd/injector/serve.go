package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/injector/internal/app"
	"github.com/vango-dev/injector/internal/server"
	"github.com/vango-dev/injector/pkg/middleware"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web directory and inject endpoint",
		Long: `Start the HTTP front end.

Routes:
  GET /inject/{module}   include markup (?type=&build=&minify=&version=&force=)
  GET /healthz           health check
  GET /metrics           Prometheus metrics
  GET <url_prefix>*      files from the web directory

Examples:
  injector serve
  injector serve --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			metrics := middleware.NewMetrics(middleware.WithRegistry(prometheus.DefaultRegisterer))
			inj, err := app.New(cfg, app.WithLogger(opts.logger), app.WithObserver(metrics))
			if err != nil {
				return err
			}

			srv := server.New(inj, server.Config{
				Address:   cfg.ServerAddress(),
				WebDir:    cfg.WebPath(),
				URLPrefix: cfg.URLPrefix,
				Metrics:   metrics,
				Logger:    opts.logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			success(cmd.OutOrStdout(), "Serving %s on http://%s", cfg.WebPath(), cfg.ServerAddress())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default from server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default from server.port)")

	return cmd
}
