// Package rxmetrics tracks pool-wide hashrate, grounded
// on consensus/keccak.Seal's hashrate metrics.Meter field and its
// periodic keccak.hashrate.Mark(attempts) calls. The teacher pulls its
// meter from go-ethereum's metrics package, which is itself a thin
// wrapper around rcrowley/go-metrics; this package depends on
// rcrowley/go-metrics directly.
package rxmetrics

import "github.com/rcrowley/go-metrics"

// Meter tracks a moving-average rate of events (hashes attempted,
// solutions found) the way keccak.Seal's hashrate field does.
type Meter interface {
	Mark(n int64)
	Rate1() float64
}

// NewMeter returns a forced (always-registered, never GC'd) meter, as
// the teacher does for its per-sealer hashrate counters.
func NewMeter() Meter {
	return metrics.NewMeterForced()
}

// Registry holds the pool-wide total hashrate meter that every worker
// marks into, so the supervisor can log aggregate hashrate without each
// worker needing its own registered meter.
type Registry struct {
	total Meter
}

// NewRegistry builds a Registry with its pool-wide total meter started.
func NewRegistry() *Registry {
	return &Registry{total: NewMeter()}
}

// Total returns the pool-wide hashrate meter.
func (r *Registry) Total() Meter {
	return r.total
}
