// Package metrics exposes Prometheus collectors for query execution, the
// results cache, and the worker pool.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sqllab"

var (
	queriesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_submitted_total",
			Help:      "Queries accepted for execution, by mode.",
		},
		[]string{"mode"},
	)
	queriesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_finished_total",
			Help:      "Queries that reached a terminal status.",
		},
		[]string{"status"},
	)
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Wall-clock execution time against the target database.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"engine"},
	)
	cacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_cache_operations_total",
			Help:      "Results cache operations by kind and outcome.",
		},
		[]string{"op", "outcome"},
	)
	cacheReadSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_cache_read_seconds",
			Help:      "Latency of results cache reads.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	dispatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_failures_total",
			Help:      "Async submissions that could not be enqueued.",
		},
	)
	cachePayloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_cache_payload_bytes",
			Help:      "Compressed size of stored result payloads.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		},
	)
	tasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_tasks_in_flight",
			Help:      "Tasks currently executing on this worker.",
		},
	)
	taskQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_queue_depth",
			Help:      "Tasks waiting or leased in the durable queue.",
		},
	)
	staleQueriesReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_queries_reaped_total",
			Help:      "Abandoned queries failed by maintenance.",
		},
	)
)

// QuerySubmitted records an accepted submission. mode is "sync" or "async".
func QuerySubmitted(mode string) {
	queriesSubmitted.WithLabelValues(mode).Inc()
}

// QueryFinished records a terminal status.
func QueryFinished(status string) {
	queriesFinished.WithLabelValues(status).Inc()
}

// ObserveExecution records how long an engine call took.
func ObserveExecution(engine string, d time.Duration) {
	queryDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// CacheOp records a results cache operation. outcome is one of "hit",
// "miss", "ok", or "error".
func CacheOp(op, outcome string) {
	cacheOps.WithLabelValues(op, outcome).Inc()
}

// ObserveCacheRead records the latency of a cache read.
func ObserveCacheRead(d time.Duration) {
	cacheReadSeconds.Observe(d.Seconds())
}

// DispatchFailed counts a failed enqueue.
func DispatchFailed() {
	dispatchFailures.Inc()
}

// CachePayload records the size of a stored payload.
func CachePayload(size int) {
	cachePayloadBytes.Observe(float64(size))
}

// TaskStarted marks a worker task as running.
func TaskStarted() { tasksInFlight.Inc() }

// TaskDone marks a worker task as finished.
func TaskDone() { tasksInFlight.Dec() }

// SetQueueDepth publishes the current queue depth.
func SetQueueDepth(n int64) {
	taskQueueDepth.Set(float64(n))
}

// StaleReaped counts queries failed by maintenance.
func StaleReaped(n int64) {
	staleQueriesReaped.Add(float64(n))
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
