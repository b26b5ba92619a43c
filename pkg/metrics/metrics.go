// Package metrics provides the centralized Prometheus metrics registry for
// the LLM cache. All metrics are defined in their respective packages
// (cache, gateway) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the LLM cache.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - llmcache_hits_total (Counter): Cache hits
//   - llmcache_misses_total (Counter): Cache misses (including degraded lookups)
//   - llmcache_errors_total{operation} (Counter): Store errors by operation (get, set, invalidate)
//   - llmcache_invalidated_keys_total (Counter): Keys removed by invalidation runs
//   - llmcache_stored_bytes_total (Counter): Payload bytes written to the store
//
// Gateway Request Metrics (pkg/gateway):
//   - llmgw_requests_total{status} (Counter): Total gateway requests by HTTP status
//   - llmgw_request_duration_seconds (Histogram): Gateway request duration
//   - llmgw_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Gateway Retry Metrics (pkg/gateway):
//   - llmgw_retries_total{error_class} (Counter): Retry attempts by error class
//   - llmgw_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - llmgw_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(llmcache_hits_total[5m])) /
//   (sum(rate(llmcache_hits_total[5m])) + sum(rate(llmcache_misses_total[5m])))
//
//   # Store Error Rate by Operation
//   rate(llmcache_errors_total[5m])
//
//   # P95 Gateway Latency
//   histogram_quantile(0.95, rate(llmgw_request_duration_seconds_bucket[5m]))
//
//   # Retry Pressure
//   rate(llmgw_retries_total[5m])
