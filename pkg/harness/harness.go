// Package harness drives get-or-compute calls through a ResponseCache
// under defined scenarios and derives hit-rate and latency statistics.
//
// Scenarios execute their requests sequentially so each latency sample is
// attributable to a single in-flight call. Hit rates are observed, never
// assumed: with an unreachable store a repeat-identical scenario reports
// the all-miss behavior it actually saw.
package harness

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/llmgw/llmcache/pkg/cache"
)

// ComputeFor builds the upstream call for one descriptor. The harness
// treats the returned callback as an opaque boundary; its failures abort
// the scenario.
type ComputeFor func(desc cache.RequestDescriptor) cache.ComputeFunc

// Harness runs measurement scenarios against a ResponseCache.
type Harness struct {
	cache  *cache.ResponseCache
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a harness writing entries with the given TTL.
func New(rc *cache.ResponseCache, ttl time.Duration) *Harness {
	return &Harness{
		cache:  rc,
		ttl:    ttl,
		logger: log.With().Str("component", "harness").Logger(),
	}
}

// RepeatIdentical issues the same descriptor n times with caching enabled.
// The first call is expected to miss and the remainder to hit, but the
// result reports whatever actually happened. A compute failure aborts the
// scenario and propagates.
func (h *Harness) RepeatIdentical(ctx context.Context, name string, desc cache.RequestDescriptor, n int, compute cache.ComputeFunc) (Result, error) {
	acc := NewAccumulator()

	for i := 0; i < n; i++ {
		outcome, err := h.cache.GetOrCompute(ctx, desc, h.ttl, compute, true)
		if err != nil {
			acc.RecordFailure()
			return Result{}, fmt.Errorf("scenario %q request %d: %w", name, i+1, err)
		}
		acc.Record(outcome)

		h.logger.Debug().
			Str("scenario", name).
			Int("request", i+1).
			Bool("hit", outcome.Hit).
			Dur("latency", outcome.Latency).
			Msg("Request completed")
	}

	return acc.Summarize(name), nil
}

// Baseline issues one uncached request per descriptor. It serves only as a
// latency reference: the cache is bypassed entirely, so the hit rate is
// always zero and the speedup is reported as 1.
func (h *Harness) Baseline(ctx context.Context, name string, descs []cache.RequestDescriptor, compute ComputeFor) (Result, error) {
	acc := NewAccumulator()

	for i, desc := range descs {
		outcome, err := h.cache.GetOrCompute(ctx, desc, h.ttl, compute(desc), false)
		if err != nil {
			acc.RecordFailure()
			return Result{}, fmt.Errorf("scenario %q request %d: %w", name, i+1, err)
		}
		acc.Record(outcome)

		h.logger.Debug().
			Str("scenario", name).
			Int("request", i+1).
			Dur("latency", outcome.Latency).
			Msg("Baseline request completed")
	}

	result := acc.Summarize(name)
	result.Speedup = 1.0 // a reference scenario, by definition no speedup
	return result, nil
}

// Result is one scenario's summary row, in the order scenarios ran.
type Result struct {
	// Name identifies the scenario
	Name string

	// Requests is the number of calls issued
	Requests int

	// FirstLatency and FirstHit describe the first call
	FirstLatency time.Duration
	FirstHit     bool

	// MeanLatency is the mean over all calls after the first
	// (zero when the scenario issued a single call)
	MeanLatency time.Duration

	// HitRate is observed hits divided by total calls
	HitRate float64

	// Speedup is FirstLatency / MeanLatency; +Inf when MeanLatency is
	// exactly zero (degenerate instantaneous cache reads)
	Speedup float64
}

// SpeedupString formats the speedup for display.
func (r Result) SpeedupString() string {
	if math.IsInf(r.Speedup, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.1fx", r.Speedup)
}
