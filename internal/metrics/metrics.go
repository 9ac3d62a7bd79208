package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes counters and histograms for inbound API requests and outbound
// upstream calls, and a counter for employee records received from upstream.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	UpstreamRequests  *prometheus.CounterVec
	UpstreamDuration  *prometheus.HistogramVec
	EmployeesFetched  prometheus.Counter
	DerivedViewsEmpty *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_http_requests_total",
			Help: "Total number of API requests broken down by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iris_http_request_duration_seconds",
			Help:    "Latency distribution of API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		UpstreamRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_upstream_requests_total",
			Help: "Total number of calls to the upstream employee service by operation and result.",
		}, []string{"operation", "result"}),
		UpstreamDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iris_upstream_request_duration_seconds",
			Help:    "Duration of calls to the upstream employee service.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}), // operation: 'fetch_all', 'fetch_by_id', 'create', 'delete_by_name'
		EmployeesFetched: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "iris_employees_fetched_total",
			Help: "Total number of employee records received from the upstream service.",
		}),
		DerivedViewsEmpty: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "iris_derived_views_empty_total",
			Help: "Total number of derived views (search, highest salary, top earners) that came out empty.",
		}, []string{"view"}),
	}

	metrics.UpstreamRequests.WithLabelValues("fetch_all", "success")
	metrics.UpstreamRequests.WithLabelValues("fetch_all", "failure")

	return metrics
}
