package pool

import "sync/atomic"

// Flags holds the process-wide, lock-free shared state polled by
// every worker between loop iterations (spec.md §3 "Shared flags",
// §5 "lock-free atomics with relaxed ordering").
//
// Generation replaces a plain restart boolean: rather than a flag the
// supervisor sets and then has to clear before the new generation
// starts (a race the old generation can miss entirely once it's
// cleared), each rotation bumps Generation once. A worker is stale,
// and must exit, exactly when its own spawn generation no longer
// matches Generation — a condition that stays true until the worker
// notices it, no matter how long that takes, and that a newly spawned
// worker can never see about itself.
type Flags struct {
	AppExit          atomic.Bool
	Generation       atomic.Uint64
	PuzzleDifficulty atomic.Uint32
	CurrentKeyBlock  atomic.Uint64
	MaxWorkers       atomic.Uint32
	AllocWorkers     atomic.Uint32
}

// NewFlags builds Flags with the startup-fixed values.
func NewFlags(maxWorkers, allocWorkers, difficulty uint32) *Flags {
	f := &Flags{}
	f.MaxWorkers.Store(maxWorkers)
	f.AllocWorkers.Store(allocWorkers)
	f.PuzzleDifficulty.Store(difficulty)
	return f
}
