package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_cache_hits_total",
			Help: "Cache entries served",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_cache_misses_total",
			Help: "Cache entries absent or unreadable",
		},
		[]string{"kind"},
	)

	// Adapter metrics
	PrimaryFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_primary_fallbacks_total",
			Help: "Reads degraded from the primary store to the cache",
		},
		[]string{"op"},
	)

	// Sync queue metrics
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_sync_jobs_enqueued_total",
			Help: "Sync jobs enqueued",
		},
		[]string{"type"},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_sync_jobs_processed_total",
			Help: "Sync jobs processed",
		},
		[]string{"type", "status"}, // "completed", "retried", "failed"
	)

	EnqueueFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_sync_enqueue_fallbacks_total",
			Help: "Enqueue failures downgraded to direct cache writes",
		},
	)

	// Segmentation metrics
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_chat_sessions_started_total",
			Help: "New chat sessions opened by the segmentation engine",
		},
	)
)
