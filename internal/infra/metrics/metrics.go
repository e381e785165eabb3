package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// The registry panics on duplicate registration, so Init guards with a Once.
var once sync.Once

var (
	// ResolutionsTotal counts resolution outcomes as seen by the HTTP layer:
	// redirect, metadata, invalid_input, not_found, template_error.
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golink_resolutions_total",
			Help: "Shortlink resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	// LookupsTotal counts lookup traffic per tier (bloom, redis, postgres)
	// and result (hit, miss, negative, error).
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golink_lookups_total",
			Help: "Shortlink lookups by tier and result.",
		},
		[]string{"tier", "result"},
	)

	// HTTPRequestsTotal counts finished HTTP requests. The route label uses
	// the matched route pattern, not the raw path, to keep cardinality down.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golink_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds tracks request latency distributions.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "golink_http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Init registers all collectors exactly once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			ResolutionsTotal,
			LookupsTotal,
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
		)
	})
}
