package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/iris/internal/config"
	"github.com/UnknownOlympus/iris/internal/lib/logger/setup"
	"github.com/UnknownOlympus/iris/internal/lib/logger/sl"
	"github.com/UnknownOlympus/iris/internal/server"
	"github.com/UnknownOlympus/iris/internal/upstream/fake"
)

// main runs an in-memory employee directory that speaks the upstream contract, for local development.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadMock()

	logger := setup.Logger(cfg.Env, os.Stdout).With("division", "mockupstream")

	directory := fake.NewDirectory(logger)
	directory.Seed(cfg.Mock.Seed)

	srv := &http.Server{
		Addr:              cfg.Mock.Address,
		Handler:           directory.Handler(),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	logger.InfoContext(ctx, "Mock upstream ready", "base_path", fake.BasePath)

	if err := server.Run(ctx, logger, srv, cfg.HTTP.ShutdownTimeout); err != nil {
		logger.ErrorContext(ctx, "Mock upstream stopped with error", sl.Err(err))
		stop()
		os.Exit(1)
	}
}
