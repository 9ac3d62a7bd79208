package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/iris/internal/api"
	"github.com/UnknownOlympus/iris/internal/config"
	"github.com/UnknownOlympus/iris/internal/lib/logger/setup"
	"github.com/UnknownOlympus/iris/internal/lib/logger/sl"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/UnknownOlympus/iris/internal/server"
	"github.com/UnknownOlympus/iris/internal/services/employees"
	"github.com/UnknownOlympus/iris/internal/upstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := setup.Logger(cfg.Env, os.Stdout)

	// Create a separate registry for metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	httpClient := upstream.CreateHTTPClient(logger, cfg.Upstream.Timeout)
	client := upstream.NewClient(logger, httpClient, appMetrics, cfg.Upstream.BaseURL)
	directory := employees.NewDirectory(logger, client, appMetrics)

	apiServer := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.NewRouter(logger, directory, appMetrics, api.Options{
			CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		}),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.StartMonitoringServer(groupCtx, logger, reg, cfg.Monitoring.Port, client.BaseURL())
	})

	group.Go(func() error {
		logger.InfoContext(groupCtx, "Starting employee API", "upstream", client.BaseURL())
		return server.Run(groupCtx, logger, apiServer, cfg.HTTP.ShutdownTimeout)
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err := group.Wait(); err != nil {
		logger.ErrorContext(ctx, "Application stopped with error", sl.Err(err))
		stop()
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Application stopped gracefully...")
}
