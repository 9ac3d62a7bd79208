package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker reports whether the upstream employee service answers.
type HealthChecker struct {
	upstreamURL string
	httpClient  *http.Client
	log         *slog.Logger
}

func NewHealthChecker(upstreamURL string, log *slog.Logger) *HealthChecker {
	clientTO := 5
	return &HealthChecker{
		upstreamURL: upstreamURL,
		httpClient:  &http.Client{Timeout: time.Duration(clientTO) * time.Second},
		log:         log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	status := make(map[string]string)
	overallStatus := http.StatusOK

	headReq, err := http.NewRequestWithContext(req.Context(), http.MethodHead, h.upstreamURL, nil)
	var resp *http.Response
	if err == nil {
		resp, err = h.httpClient.Do(headReq)
	}

	switch {
	case err != nil:
		status["upstream"] = "unreachable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(
			req.Context(),
			"Health check failed: upstream unreachable",
			"url",
			h.upstreamURL,
			"error",
			err,
		)
	case resp.StatusCode >= http.StatusInternalServerError:
		status["upstream"] = "degraded"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(
			req.Context(),
			"Health check failed: upstream returned error status",
			"url",
			h.upstreamURL,
			"status_code",
			resp.StatusCode,
		)
	default:
		status["upstream"] = "ok"
	}
	if resp != nil {
		if err = resp.Body.Close(); err != nil {
			h.log.WarnContext(req.Context(), "Failed to close response body", "error", err)
		}
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
