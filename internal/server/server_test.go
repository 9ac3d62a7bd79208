package server_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/iris/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitoringHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer mockUpstream.Close()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "iris_test_total", Help: "Test counter."})
	reg.MustRegister(counter)
	counter.Inc()

	handler := server.NewMonitoringHandler(logger, reg, mockUpstream.URL)

	t.Run("metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "iris_test_total 1")
	})

	t.Run("healthz", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, `{"upstream":"ok"}`, rr.Body.String())
	})
}

func freeAddr(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	return addr
}

func TestRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("serves until context is canceled", func(t *testing.T) {
		addr := freeAddr(t)
		srv := &http.Server{
			Addr: addr,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "pong")
			}),
			ReadHeaderTimeout: time.Second,
		}

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- server.Run(ctx, logger, srv, time.Second)
		}()

		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + addr) //nolint:noctx // test probe
			if err != nil {
				return false
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return string(body) == "pong"
		}, 2*time.Second, 20*time.Millisecond)

		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("reports listen failure", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()

		srv := &http.Server{Addr: listener.Addr().String(), ReadHeaderTimeout: time.Second}

		err = server.Run(t.Context(), logger, srv, time.Second)

		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "failed"))
	})
}
