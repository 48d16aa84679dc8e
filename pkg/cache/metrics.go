package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for cache operations.
var (
	// CacheHits counts batches served from Redis without a remote
	// request.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kronos_cache_hits_total",
		Help: "Total batch fetches served from cache",
	})

	// CacheMisses counts batches that had to be fetched remotely.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kronos_cache_misses_total",
		Help: "Total batch fetches not found in cache",
	})

	// CacheErrors counts failed cache operations by operation type.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kronos_cache_errors_total",
		Help: "Total cache operation errors by operation",
	}, []string{"operation"})
)
