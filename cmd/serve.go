package cmd

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/abhisek/codecoach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.Server.Addr
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			addr = v
		}

		srv := server.New(a.pipeline, server.Config{
			Addr:           addr,
			AllowOrigins:   a.cfg.Server.AllowOrigins,
			RequestTimeout: a.cfg.Server.RequestTimeout,
			Gatherer:       prometheus.DefaultGatherer,
		}, a.logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
