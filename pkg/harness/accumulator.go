package harness

import (
	"math"
	"time"

	"github.com/llmgw/llmcache/pkg/cache"
)

// Accumulator collects per-scenario counters. It is owned by the scenario
// that created it, mutated by sequential recordings and read once at the
// end; it is not safe for concurrent use across scenarios.
type Accumulator struct {
	Total             int
	Successes         int
	Failures          int
	Hits              int
	CumulativeLatency time.Duration

	FirstLatency time.Duration
	FirstHit     bool
	Subsequent   []time.Duration
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Record adds one successful call outcome.
func (a *Accumulator) Record(o cache.Outcome) {
	if a.Total == 0 {
		a.FirstLatency = o.Latency
		a.FirstHit = o.Hit
	} else {
		a.Subsequent = append(a.Subsequent, o.Latency)
	}

	a.Total++
	a.Successes++
	a.CumulativeLatency += o.Latency
	if o.Hit {
		a.Hits++
	}
}

// RecordFailure counts a call that ended in a compute error.
func (a *Accumulator) RecordFailure() {
	a.Total++
	a.Failures++
}

// HitRate returns observed hits over total calls.
func (a *Accumulator) HitRate() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Hits) / float64(a.Total)
}

// MeanSubsequent returns the mean latency over all calls after the first.
func (a *Accumulator) MeanSubsequent() time.Duration {
	if len(a.Subsequent) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range a.Subsequent {
		sum += d
	}
	return sum / time.Duration(len(a.Subsequent))
}

// Speedup returns FirstLatency divided by the mean subsequent latency.
// A mean of exactly zero yields +Inf.
func (a *Accumulator) Speedup() float64 {
	mean := a.MeanSubsequent()
	if mean == 0 {
		return math.Inf(1)
	}
	return float64(a.FirstLatency) / float64(mean)
}

// Summarize reads the accumulator into a scenario result record.
func (a *Accumulator) Summarize(name string) Result {
	return Result{
		Name:         name,
		Requests:     a.Total,
		FirstLatency: a.FirstLatency,
		FirstHit:     a.FirstHit,
		MeanLatency:  a.MeanSubsequent(),
		HitRate:      a.HitRate(),
		Speedup:      a.Speedup(),
	}
}
