package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-admin-store/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the store, its
// persistence and the ops server, and provides lightweight snapshots.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	mutations         *prometheus.CounterVec
	snapshotWrite     prometheus.Histogram
	snapshotSize      prometheus.Gauge
	persistFailures   *prometheus.CounterVec
	sessionTransition *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	mutationCount        uint64
	snapshotWriteCount   uint64
	persistFailureCount  uint64
	lastSnapshotBytes    int64
}

// MetricsSnapshot aggregates counters for the ops summary endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	MutationsTotal           uint64    `json:"mutations_total"`
	SnapshotWrites           uint64    `json:"snapshot_writes"`
	LastSnapshotBytes        int64     `json:"last_snapshot_bytes"`
	PersistenceFailures      uint64    `json:"persistence_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
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

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_mutations_total",
		Help: "Committed store mutations by entity kind and operation",
	}, []string{"kind", "op"})

	snapshotWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_snapshot_write_seconds",
		Help:    "Latency of durable snapshot writes",
		Buckets: prometheus.DefBuckets,
	})

	snapshotSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "store_snapshot_bytes",
		Help: "Encoded size of the last written snapshot",
	})

	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_persistence_failures_total",
		Help: "Snapshot persistence failures by reason",
	}, []string{"reason"})

	sessionTransition := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_transitions_total",
		Help: "Weekly session transitions by kind",
	}, []string{"transition"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, mutations, snapshotWrite, snapshotSize, persistFailures, sessionTransition, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		mutations:         mutations,
		snapshotWrite:     snapshotWrite,
		snapshotSize:      snapshotSize,
		persistFailures:   persistFailures,
		sessionTransition: sessionTransition,
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

// TrackInProgressSessions registers a gauge reading the number of sessions
// currently in progress from count.
func (m *MetricsService) TrackInProgressSessions(count func() int) {
	if m == nil || count == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sessions_in_progress",
		Help: "Weekly sessions currently in progress",
	}, func() float64 {
		return float64(count())
	}))
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordMutation counts a committed store mutation.
func (m *MetricsService) RecordMutation(kind models.EntityKind, op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(string(kind), op).Inc()
	atomic.AddUint64(&m.mutationCount, 1)
}

// ObserveSnapshotWrite tracks a successful snapshot write.
func (m *MetricsService) ObserveSnapshotWrite(duration time.Duration, size int) {
	if m == nil {
		return
	}
	m.snapshotWrite.Observe(duration.Seconds())
	m.snapshotSize.Set(float64(size))
	atomic.AddUint64(&m.snapshotWriteCount, 1)
	atomic.StoreInt64(&m.lastSnapshotBytes, int64(size))
}

// RecordPersistenceFailure counts a failed or discarded snapshot.
func (m *MetricsService) RecordPersistenceFailure(reason string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(reason).Inc()
	atomic.AddUint64(&m.persistFailureCount, 1)
}

// RecordSessionTransition counts a weekly session state change.
func (m *MetricsService) RecordSessionTransition(transition string) {
	if m == nil {
		return
	}
	m.sessionTransition.WithLabelValues(transition).Inc()
}

// Snapshot returns aggregated metrics suitable for the ops summary.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		MutationsTotal:           atomic.LoadUint64(&m.mutationCount),
		SnapshotWrites:           atomic.LoadUint64(&m.snapshotWriteCount),
		LastSnapshotBytes:        atomic.LoadInt64(&m.lastSnapshotBytes),
		PersistenceFailures:      atomic.LoadUint64(&m.persistFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
