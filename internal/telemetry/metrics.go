// Package telemetry provides application-level observability for the project directory.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are served on the
// side-channel HTTP server started by main.go:
//
//	GET http://<host>:<PDIR_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Hosting-provider request counters and latency, by operation
//   - Provider cache hits and misses, by entity kind
//   - Ownership claim outcomes
//   - Recovered background goroutine panics
//   - Database connection pool gauge (polled every 30 s)
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// The path label holds the Gin route template (e.g. /api/v1/repositories/:owner/:name),
// NOT the raw URL, to prevent unbounded cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Hosting-provider metrics, recorded by the provider client for every upstream call.
//
// ProviderRequestsTotal is a CounterVec with labels {operation, status}. operation is a fixed
// name such as "get_repository" or "list_user_pull_requests"; status is the HTTP status code,
// or "error" when no response was received.
//
// Example PromQL queries:
//   - Upstream error ratio:  sum(rate(provider_requests_total{status!~"2.."}[5m])) / sum(rate(provider_requests_total[5m]))
var (
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of hosting-provider API calls, by operation and response status.",
		},
		[]string{"operation", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Histogram of hosting-provider API call latencies, by operation.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ProviderCacheRequestsTotal counts read-through cache lookups with labels {kind, result},
	// result being "hit" or "miss".
	ProviderCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_cache_requests_total",
			Help: "Total number of provider cache lookups, by entity kind and result.",
		},
		[]string{"kind", "result"},
	)

	// ProviderPaginationTruncatedTotal counts list operations that stopped at the page cap
	// while the provider still reported more pages.
	ProviderPaginationTruncatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_pagination_truncated_total",
			Help: "Total number of paginated provider listings truncated at the page cap, by operation.",
		},
		[]string{"operation"},
	)
)

// ClaimAttemptsTotal is a CounterVec with label {outcome}: "success", "denied", "conflict" or
// "error". Denied and successful attempts correspond one-to-one with persisted claim records.
//
// Example PromQL queries:
//   - Denial ratio:  rate(claim_attempts_total{outcome="denied"}[1h]) / rate(claim_attempts_total[1h])
var ClaimAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "claim_attempts_total",
		Help: "Total number of project ownership claim attempts, by outcome.",
	},
	[]string{"outcome"},
)

// BackgroundPanicsTotal counts panics recovered by safego, by goroutine name.
var BackgroundPanicsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "background_goroutine_panics_total",
		Help: "Total number of panics recovered in background goroutines.",
	},
	[]string{"goroutine"},
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool. It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits when the database becomes unreachable, which happens when the
// application shuts down and closes the pool.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
