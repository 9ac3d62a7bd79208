package api

import (
	"log/slog"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/UnknownOlympus/iris/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Options tunes the outer middleware of the public router.
type Options struct {
	// CORSAllowedOrigins enables CORS for the listed origins. Empty disables it.
	CORSAllowedOrigins []string
}

// NewRouter builds the public HTTP handler: routes, request ids, logging, metrics, compression and optional CORS.
func NewRouter(log *slog.Logger, directory Directory, metrics *metrics.Metrics, opts Options) http.Handler {
	router := mux.NewRouter()
	router.Use(instrument(log, metrics))

	NewHandler(log, directory).Register(router)

	router.NotFoundHandler = instrument(log, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = writeError(w, r, http.StatusNotFound, codeNotFound, "route not found")
	}))
	router.MethodNotAllowedHandler = instrument(log, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}))

	var handler http.Handler = withRequestID(router)
	handler = gziphandler.GzipHandler(handler)

	if len(opts.CORSAllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
		}).Handler(handler)
	}

	return handler
}
