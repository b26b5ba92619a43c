// Package cache provides Redis-backed caching for LLM gateway responses.
//
// The package is built from three pieces:
//
//   - KeyBuilder derives a deterministic, fixed-length cache key from a
//     RequestDescriptor (provider, model, messages, parameters).
//   - Store wraps a shared Redis instance with get/set/invalidate semantics
//     and store-enforced TTLs. Every keyed operation degrades gracefully:
//     transport errors and malformed entries behave like cache misses, so
//     the cache is strictly an optimization and never a reliability
//     dependency.
//   - ResponseCache composes the two into get-or-compute semantics for an
//     arbitrary upstream call.
//
// # Basic Usage
//
//	store, err := cache.New(cache.DefaultConfig())
//	if err != nil {
//		// Redis unreachable - refuse to run with caching enabled
//		return err
//	}
//	defer store.Close()
//
//	rc := cache.NewResponseCache(store, cache.NewKeyBuilder(""))
//
//	desc := cache.RequestDescriptor{
//		Provider: "ollama",
//		Model:    "llama3",
//		Messages: []cache.Message{{Role: "user", Content: "ping"}},
//		Params:   map[string]any{"max_tokens": 5},
//	}
//
//	outcome, err := rc.GetOrCompute(ctx, desc, 5*time.Minute, compute, true)
//
// # Key Namespace
//
// All keys carry a namespace prefix (default "llm_cache:") so that
// pattern-based invalidation stays scoped to this cache inside a Redis
// instance shared with other data.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - llmcache_hits_total - Cache hits
//   - llmcache_misses_total - Cache misses (including degraded-store reads)
//   - llmcache_errors_total{operation} - Store operation errors
//   - llmcache_invalidated_keys_total - Keys removed by Invalidate
//   - llmcache_stored_bytes_total - Serialized bytes written to the store
//
// # Concurrency
//
// A Store is safe for concurrent use. There is no cross-caller
// single-flight guarantee per key: two concurrent misses on the same
// fingerprint both invoke their compute callback and both write the
// result; last write wins. See ResponseCache.GetOrCompute.
package cache
