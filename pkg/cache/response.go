package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComputeFunc produces a response payload when the cache cannot.
// It is an opaque caller-supplied boundary (typically a gateway call);
// its errors propagate unchanged and are never cached.
type ComputeFunc func(ctx context.Context) (json.RawMessage, error)

// Outcome is the transient per-call result of GetOrCompute. It is never
// persisted; callers consume it immediately.
type Outcome struct {
	// Payload is the response, from the cache or freshly computed
	Payload json.RawMessage

	// Hit reports whether the payload came from the cache
	Hit bool

	// Latency is the total duration of this call
	Latency time.Duration

	// Key is the derived cache key (empty when the cache was bypassed)
	Key CacheKey
}

// ResponseCache composes a KeyBuilder and a Store into get-or-compute
// semantics. It holds no entry state of its own.
//
// There is no cross-caller mutual exclusion per key: two concurrent misses
// on the same fingerprint both invoke their compute callback and both
// write the result to the store; last write wins. This duplicate-compute
// race is an accepted design limitation, not an oversight.
type ResponseCache struct {
	keys   *KeyBuilder
	store  *Store
	logger zerolog.Logger
}

// NewResponseCache creates a response cache over the given store and key
// builder. A nil builder selects one with the store's namespace.
func NewResponseCache(store *Store, keys *KeyBuilder) *ResponseCache {
	if keys == nil {
		keys = NewKeyBuilder(store.Namespace())
	}
	return &ResponseCache{
		keys:   keys,
		store:  store,
		logger: log.With().Str("component", "response-cache").Logger(),
	}
}

// GetOrCompute returns the cached payload for desc, or invokes compute and
// caches its result with the given TTL.
//
// With useCache false, compute runs unconditionally and the store is never
// touched. With useCache true, a present entry returns immediately with
// Hit=true and compute is not invoked; on a miss compute runs, a
// successful result is written back best-effort, and a failed compute
// propagates unchanged with nothing written.
//
// Per call: at most one store read, one store write and one compute
// invocation.
func (c *ResponseCache) GetOrCompute(
	ctx context.Context,
	desc RequestDescriptor,
	ttl time.Duration,
	compute ComputeFunc,
	useCache bool,
) (Outcome, error) {
	start := time.Now()

	if !useCache {
		payload, err := compute(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Payload: payload,
			Hit:     false,
			Latency: time.Since(start),
		}, nil
	}

	key, err := c.keys.Key(desc)
	if err != nil {
		return Outcome{}, err
	}

	if entry, ok := c.store.Get(ctx, key); ok {
		c.logger.Debug().
			Str("key", key.String()).
			Str("model", desc.Model).
			Msg("Cache hit")
		return Outcome{
			Payload: entry.Payload,
			Hit:     true,
			Latency: time.Since(start),
			Key:     key,
		}, nil
	}

	c.logger.Debug().
		Str("key", key.String()).
		Str("model", desc.Model).
		Msg("Cache miss, invoking upstream")

	payload, err := compute(ctx)
	if err != nil {
		return Outcome{}, err
	}

	c.store.Set(ctx, key, payload, ttl)

	return Outcome{
		Payload: payload,
		Hit:     false,
		Latency: time.Since(start),
		Key:     key,
	}, nil
}
