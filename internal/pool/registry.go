// Package pool implements the pool registry (C4) from spec.md §4.4 and
// the shared flags workers poll; the supervisor (C5) lives in package
// supervisor. Grounded on the thread-bookkeeping in
// pow.rs (alloc_threads/dealloc_threads/dealloc_requests/
// randomx_up_counter) and on the worker-pool shape of the teacher's
// consensus/keccak.Seal/mine.
package pool

import (
	"sync"
	"sync/atomic"
)

// Registry is the single coordinator owning alloc_set, dealloc_set,
// and dealloc_requests together behind one mutex, adopting the design
// note in spec.md §9 ("Exclusive ownership of the registry") instead
// of the source's three independently-locked primitives — the
// decrement-then-move in TryPark must be externally atomic, and a
// single lock is the simplest way to guarantee that.
type Registry struct {
	mu              sync.Mutex
	allocSet        []string
	deallocSet      []string
	deallocRequests uint32
	upCounter       atomic.Int32
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Snapshot is a point-in-time, race-free view of the registry for
// logging and control decisions.
type Snapshot struct {
	Alloc           []string
	Dealloc         []string
	DeallocRequests uint32
	Ready           int32
}

// Register appends identity to alloc_set. Called by a worker at the
// very start of its run, before it builds its RandomX context —
// mirroring pow.rs's randomx_thread_pool_handler, which pushes the
// thread name into alloc_threads inside the spawned closure itself.
func (r *Registry) Register(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocSet = append(r.allocSet, identity)
}

// TryPark implements the decrement-then-move sequence from spec.md
// §4.4: if dealloc_requests > 0, atomically decrement it, move
// identity from alloc_set to dealloc_set, and drop the ready counter.
// Returns whether identity was parked.
func (r *Registry) TryPark(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deallocRequests == 0 {
		return false
	}
	idx := indexOf(r.allocSet, identity)
	if idx < 0 {
		return false
	}
	r.deallocRequests--
	r.allocSet = append(r.allocSet[:idx], r.allocSet[idx+1:]...)
	r.deallocSet = append(r.deallocSet, identity)
	r.upCounter.Add(-1)
	return true
}

// Reactivate removes identities from dealloc_set; the caller (the
// supervisor) is responsible for spawning fresh workers under those
// same identities first and waiting for readiness before calling this,
// so that invariant I3 never transiently overcounts.
func (r *Registry) Reactivate(identities []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range identities {
		if idx := indexOf(r.deallocSet, id); idx >= 0 {
			r.deallocSet = append(r.deallocSet[:idx], r.deallocSet[idx+1:]...)
		}
	}
}

// BeginRotation clears alloc_set (old identities are being replaced by
// a fresh generation bound to the new key block) and resets the ready
// counter, without touching dealloc_set — parked workers stay parked
// across a rotation.
func (r *Registry) BeginRotation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocSet = nil
	r.upCounter.Store(0)
}

// SetDeallocRequests sets the pending-deallocation counter (operator
// capacity-decrease path).
func (r *Registry) SetDeallocRequests(n uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deallocRequests = n
}

// ResetReadiness zeroes up_counter without touching alloc_set. The
// rotation path uses BeginRotation instead, which does both.
func (r *Registry) ResetReadiness() {
	r.upCounter.Store(0)
}

// IncReady increments up_counter; called by a worker once its
// dataset-init completes.
func (r *Registry) IncReady() {
	r.upCounter.Add(1)
}

// Ready returns the current up_counter value.
func (r *Registry) Ready() int32 {
	return r.upCounter.Load()
}

// Snapshot returns a race-free copy of the registry's bookkeeping.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Alloc:           append([]string(nil), r.allocSet...),
		Dealloc:         append([]string(nil), r.deallocSet...),
		DeallocRequests: r.deallocRequests,
		Ready:           r.upCounter.Load(),
	}
}

func indexOf(set []string, v string) int {
	for i, s := range set {
		if s == v {
			return i
		}
	}
	return -1
}
