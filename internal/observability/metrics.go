package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Envelope outcome labels.
const (
	ResultOK       = "ok"
	ResultUnknown  = "unknown"
	ResultInvalid  = "invalid"
	ResultRejected = "rejected"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "serialforce",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "serialforce",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	envelopes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "serialforce",
			Subsystem: "envelope",
			Name:      "checks_total",
			Help:      "Envelopes inspected or verified, by outcome.",
		},
		[]string{"surface", "op", "result"},
	)
	envelopeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "serialforce",
			Subsystem: "envelope",
			Name:      "size_bytes",
			Help:      "Size of envelopes received for inspection.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"surface", "op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, envelopes, envelopeBytes)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordEnvelope counts one inspect or verify outcome.
func RecordEnvelope(surface, op, result string, size int) {
	RegisterMetrics()
	envelopes.WithLabelValues(surface, op, result).Inc()
	envelopeBytes.WithLabelValues(surface, op).Observe(float64(size))
}

// EnvelopeResult picks the outcome label for a checked envelope tree.
func EnvelopeResult(invalid, unknown int) string {
	switch {
	case invalid > 0:
		return ResultInvalid
	case unknown > 0:
		return ResultUnknown
	default:
		return ResultOK
	}
}
