package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llmcache_hits_total",
			Help: "Total number of LLM cache hits",
		},
	)

	// CacheMisses tracks cache misses, including reads degraded to misses
	// by store errors
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llmcache_misses_total",
			Help: "Total number of LLM cache misses",
		},
	)

	// CacheErrors tracks store operation errors by operation
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmcache_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "get", "set", "invalidate"
	)

	// InvalidatedKeys tracks keys removed by pattern invalidation
	InvalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llmcache_invalidated_keys_total",
			Help: "Total number of cache keys removed by invalidation",
		},
	)

	// StoredBytes tracks serialized entry bytes written to the store
	StoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llmcache_stored_bytes_total",
			Help: "Total serialized bytes written to the cache store",
		},
	)
)
