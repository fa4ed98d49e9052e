// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Probe result labels
const (
	ProbeReachable   = "reachable"
	ProbeUnreachable = "unreachable"
	ProbeBadStatus   = "bad_status"
)

// Source fetch result labels
const (
	FetchOK           = "ok"
	FetchStatusError  = "status_error"
	FetchNetworkError = "network_error"
)

// MetricsManager manages Prometheus metrics for reachlist. Every manager owns
// its registry, so several managers can coexist in one process. All record
// methods are safe to call on a nil manager.
type MetricsManager struct {
	registry *prometheus.Registry

	// Request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimitHits   prometheus.Counter

	// Source metrics
	sourceFetches *prometheus.CounterVec
	sourceLines   prometheus.Histogram

	// Probe metrics
	probesTotal   *prometheus.CounterVec
	probeDuration prometheus.Histogram

	// Run metrics
	entriesTotal *prometheus.CounterVec
	runsActive   prometheus.Gauge
	runDuration  prometheus.Histogram
}

// NewMetricsManager creates a metrics manager with Go runtime and process
// collectors registered alongside the service metrics.
func NewMetricsManager(namespace string) *MetricsManager {
	if namespace == "" {
		namespace = "reachlist"
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	mm := &MetricsManager{registry: registry}

	mm.requestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"route", "status_code"},
	)

	mm.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"route"},
	)

	mm.rateLimitHits = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the inbound rate limiter",
		},
	)

	mm.sourceFetches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetches_total",
			Help:      "Source list fetches by result",
		},
		[]string{"result"},
	)

	mm.sourceLines = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "lines",
			Help:      "Number of non-empty lines per fetched source list",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	mm.probesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "probe",
			Name:      "total",
			Help:      "Reachability probes by result",
		},
		[]string{"result"},
	)

	mm.probeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "probe",
			Name:      "duration_seconds",
			Help:      "Reachability probe latency in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	mm.entriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "entries_total",
			Help:      "Processed list entries by outcome reason",
		},
		[]string{"reason"},
	)

	mm.runsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_active",
			Help:      "Number of filter runs in progress",
		},
	)

	mm.runDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Filter run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	return mm
}

// Registry exposes the underlying registry
func (mm *MetricsManager) Registry() *prometheus.Registry {
	if mm == nil {
		return nil
	}
	return mm.registry
}

// HTTP request metrics
func (mm *MetricsManager) RecordRequest(route string, statusCode int, duration time.Duration) {
	if mm == nil {
		return
	}
	mm.requestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	mm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (mm *MetricsManager) RecordRateLimitHit() {
	if mm == nil {
		return
	}
	mm.rateLimitHits.Inc()
}

// Source metrics
func (mm *MetricsManager) RecordSourceFetch(result string, lines int) {
	if mm == nil {
		return
	}
	mm.sourceFetches.WithLabelValues(result).Inc()
	if result == FetchOK {
		mm.sourceLines.Observe(float64(lines))
	}
}

// Probe metrics
func (mm *MetricsManager) RecordProbe(result string, latency time.Duration) {
	if mm == nil {
		return
	}
	mm.probesTotal.WithLabelValues(result).Inc()
	mm.probeDuration.Observe(latency.Seconds())
}

// Pipeline metrics
func (mm *MetricsManager) RecordEntry(reason string) {
	if mm == nil {
		return
	}
	mm.entriesTotal.WithLabelValues(reason).Inc()
}

func (mm *MetricsManager) RecordRunStart() {
	if mm == nil {
		return
	}
	mm.runsActive.Inc()
}

func (mm *MetricsManager) RecordRunComplete(duration time.Duration) {
	if mm == nil {
		return
	}
	mm.runsActive.Dec()
	mm.runDuration.Observe(duration.Seconds())
}

// MetricsHandler returns an HTTP handler for the metrics endpoint
func (mm *MetricsManager) MetricsHandler() http.Handler {
	if mm == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{Registry: mm.registry})
}
