package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	monitoringShutdownTimeout = 5 * time.Second
	readHeaderTimeout         = 5 * time.Second
)

// NewMonitoringHandler serves /metrics from reg and /healthz against the upstream.
func NewMonitoringHandler(log *slog.Logger, reg *prometheus.Registry, upstreamURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/healthz", NewHealthChecker(upstreamURL, log))

	return mux
}

// StartMonitoringServer runs the metrics and health server on port until ctx is canceled.
func StartMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	port int,
	upstreamURL string,
) error {
	log = log.With(slog.String("division", "monitoring"))

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           NewMonitoringHandler(log, reg, upstreamURL),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return Run(ctx, log, srv, monitoringShutdownTimeout)
}
