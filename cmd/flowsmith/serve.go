package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tsinling0525/flowsmith/cmd/api/server"
	"github.com/Tsinling0525/flowsmith/engine"
	"github.com/Tsinling0525/flowsmith/infra"
	"github.com/Tsinling0525/flowsmith/logger"
	"github.com/Tsinling0525/flowsmith/tracing"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server (foreground)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			store, err := infra.OpenStore(a.cfg.Store.Driver, a.cfg.Store.DataDir)
			if err != nil {
				return err
			}
			opts := a.cfg.EngineOptions()
			opts.Tracer = tracing.ZapTracer{L: logger.Zap()}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.New(engine.New(opts), store).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
