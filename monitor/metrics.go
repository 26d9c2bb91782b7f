package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pixai"

// Operation outcomes used as the "result" label.
const (
	ResultSuccess      = "success"
	ResultInvalid      = "invalid"
	ResultUserNotFound = "user_not_found"
	ResultNoCredit     = "no_credit"
	ResultRemoteError  = "remote_error"
	ResultStoreError   = "store_error"
)

var (
	// Registry holds the application collectors served on /metrics.
	Registry = prometheus.NewRegistry()

	concurrentRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		},
		[]string{"method", "path"},
	)

	imageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "operations_total",
			Help:      "Image operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "remote_duration_seconds",
			Help:      "Duration of calls to the remote image service.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"operation"},
	)

	creditsDebited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credit",
			Name:      "debited_total",
			Help:      "Credits spent on successful image operations.",
		},
	)

	creditsGranted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credit",
			Name:      "granted_total",
			Help:      "Credits added by completed purchases.",
		},
	)
)

func init() {
	Registry.MustRegister(
		concurrentRequests,
		httpRequests,
		httpDuration,
		imageOperations,
		remoteDuration,
		creditsDebited,
		creditsGranted,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest records one finished HTTP request. path must be the route
// template, not the raw URL, to keep label cardinality bounded.
func RecordRequest(method string, path string, statusCode int, latency time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(latency.Seconds())
}

func IncrementConcurrent() {
	concurrentRequests.Inc()
}

func DecrementConcurrent() {
	concurrentRequests.Dec()
}

func RecordOperation(operation string, result string) {
	imageOperations.WithLabelValues(operation, result).Inc()
	if result == ResultSuccess {
		creditsDebited.Inc()
	}
}

func RecordRemoteLatency(operation string, latency time.Duration) {
	remoteDuration.WithLabelValues(operation).Observe(latency.Seconds())
}

func RecordCreditsGranted(credits int64) {
	creditsGranted.Add(float64(credits))
}
