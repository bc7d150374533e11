package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trackctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackctl",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Tracking store operations by outcome.",
		},
		[]string{"driver", "op", "outcome"},
	)
	quotesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trackctl",
			Subsystem: "quote",
			Name:      "computed_total",
			Help:      "Shipping quotes computed via the quote API.",
		},
		[]string{"scope"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, storeOps, quotesComputed)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordStoreOp(driver, op string, err error) {
	RegisterMetrics()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeOps.WithLabelValues(driver, op, outcome).Inc()
}

// RecordQuote counts one computed quote; scope is "domestic" or "international".
func RecordQuote(international bool) {
	RegisterMetrics()
	scope := "domestic"
	if international {
		scope = "international"
	}
	quotesComputed.WithLabelValues(scope).Inc()
}
