package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

// Transition results recorded by RecordTransition.
const (
	TransitionResultOK       = "ok"
	TransitionResultRejected = "rejected"
	TransitionResultCapacity = "capacity"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	applications    *prometheus.CounterVec
	verification    prometheus.Histogram
	transitions     *prometheus.CounterVec
	txRetries       prometheus.Counter
	events          *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	autoApprovalCount    uint64
	manualReviewCount    uint64
	capacityCount        uint64
	txRetryCount         uint64
	eventsPublished      uint64
	eventsFailed         uint64
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	applications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_applications_total",
		Help: "Registration submissions and decisions by outcome",
	}, []string{"outcome"})

	verification := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "verification_total_score",
		Help:    "Distribution of verification total scores",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
	})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mentorship_transitions_total",
		Help: "Mentorship status transitions by source, target and result",
	}, []string{"from", "to", "result"})

	txRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "db_transaction_retries_total",
		Help: "Transactions replayed after serialization failures or deadlocks",
	})

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_events_total",
		Help: "Domain events handed to the publisher by type and result",
	}, []string{"type", "result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		applications, verification, transitions, txRetries, events, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		applications:    applications,
		verification:    verification,
		transitions:     transitions,
		txRetries:       txRetries,
		events:          events,
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

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordApplication counts a registration outcome such as auto_approved or rejected.
func (m *MetricsService) RecordApplication(outcome models.VerificationStatus) {
	if m == nil {
		return
	}
	m.applications.WithLabelValues(string(outcome)).Inc()
	switch outcome {
	case models.VerificationAutoApproved:
		atomic.AddUint64(&m.autoApprovalCount, 1)
	case models.VerificationManualReview:
		atomic.AddUint64(&m.manualReviewCount, 1)
	}
}

// ObserveVerificationScore records a computed total score.
func (m *MetricsService) ObserveVerificationScore(total int) {
	if m == nil {
		return
	}
	m.verification.Observe(float64(total))
}

// RecordTransition counts a mentorship status change attempt.
func (m *MetricsService) RecordTransition(from, to models.MentorshipStatus, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to), result).Inc()
	if result == TransitionResultCapacity {
		atomic.AddUint64(&m.capacityCount, 1)
	}
}

// RecordTxRetry counts a replayed transaction. Its signature matches database.WithRetryHook.
func (m *MetricsService) RecordTxRetry(_ int, _ error) {
	if m == nil {
		return
	}
	m.txRetries.Inc()
	atomic.AddUint64(&m.txRetryCount, 1)
}

// RecordEvent counts a publish outcome. Its signature matches the dispatcher result hook.
func (m *MetricsService) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	result := "published"
	if err != nil {
		result = "failed"
		atomic.AddUint64(&m.eventsFailed, 1)
	} else {
		atomic.AddUint64(&m.eventsPublished, 1)
	}
	m.events.WithLabelValues(eventType, result).Inc()
}

// Snapshot returns aggregated metrics suitable for the admin summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		AutoApprovals:            atomic.LoadUint64(&m.autoApprovalCount),
		ManualReviews:            atomic.LoadUint64(&m.manualReviewCount),
		CapacityRejections:       atomic.LoadUint64(&m.capacityCount),
		TxRetries:                atomic.LoadUint64(&m.txRetryCount),
		EventsPublished:          atomic.LoadUint64(&m.eventsPublished),
		EventsFailed:             atomic.LoadUint64(&m.eventsFailed),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
