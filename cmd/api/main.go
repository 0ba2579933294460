package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tsinling0525/flowsmith/cmd/api/server"
	"github.com/Tsinling0525/flowsmith/config"
	"github.com/Tsinling0525/flowsmith/engine"
	"github.com/Tsinling0525/flowsmith/infra"
	"github.com/Tsinling0525/flowsmith/logger"
	"github.com/Tsinling0525/flowsmith/tracing"
)

func main() {
	cfg, _, err := config.Load(os.Getenv("FLOWSMITH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(logger.LoggerConfig{Debug: cfg.Log.Debug, LogFormat: cfg.Log.Format, LogFile: cfg.Log.File}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	store, err := infra.OpenStore(cfg.Store.Driver, cfg.Store.DataDir)
	if err != nil {
		logger.LogError("open store", err, nil)
		os.Exit(1)
	}
	opts := cfg.EngineOptions()
	opts.Tracer = tracing.ZapTracer{L: logger.Zap()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := server.New(engine.New(opts), store).ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.LogError("server stopped", err, nil)
		os.Exit(1)
	}
}
