package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/betosaco/soulpath-sub003/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the conflict engine.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	conflictChecks    *prometheus.CounterVec
	conflictsDetected *prometheus.CounterVec
	daySummaries      prometheus.Counter
	portFetchDuration *prometheus.HistogramVec
	breakerState      *prometheus.GaugeVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	conflictChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conflict_checks_total",
		Help: "Candidate schedule checks by outcome",
	}, []string{"outcome"})

	conflictsDetected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conflicts_detected_total",
		Help: "Conflicts reported to callers by kind and severity",
	}, []string{"kind", "severity"})

	daySummaries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "day_summaries_total",
		Help: "Day summaries produced",
	})

	portFetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "port_fetch_duration_seconds",
		Help:    "Duration of schedule storage reads",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation"})

	breakerState := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storage_breaker_state",
		Help: "Circuit breaker state for storage reads (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, conflictChecks, conflictsDetected, daySummaries, portFetchDuration, breakerState, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		conflictChecks:    conflictChecks,
		conflictsDetected: conflictsDetected,
		daySummaries:      daySummaries,
		portFetchDuration: portFetchDuration,
		breakerState:      breakerState,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveConflictCheck counts one candidate check.
func (m *MetricsService) ObserveConflictCheck(outcome string) {
	if m == nil {
		return
	}
	m.conflictChecks.WithLabelValues(outcome).Inc()
}

// ObserveConflict counts one reported conflict.
func (m *MetricsService) ObserveConflict(kind models.ConflictKind, severity models.Severity) {
	if m == nil {
		return
	}
	m.conflictsDetected.WithLabelValues(string(kind), string(severity)).Inc()
}

// ObserveDaySummary counts one produced day summary.
func (m *MetricsService) ObserveDaySummary() {
	if m == nil {
		return
	}
	m.daySummaries.Inc()
}

// ObservePortFetch records the latency of a storage read.
func (m *MetricsService) ObservePortFetch(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.portFetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetBreakerState publishes the numeric state of a named circuit breaker.
func (m *MetricsService) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(state))
}
