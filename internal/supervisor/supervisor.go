// Package supervisor implements the pool supervisor (C5): the control
// loop owning worker spawn/rotate/resize/drain/shutdown, grounded on
// main.rs's golden_hash_processor/main loop and on the teacher's
// consensus/keccak.Seal, which runs the same shape of "spawn N search
// threads, wait for a signal, tear down" loop one level down (per
// sealing attempt rather than for a whole process lifetime).
package supervisor

import (
	"sync"
	"time"

	"github.com/boneyard93501/randomx-controller/internal/config"
	"github.com/boneyard93501/randomx-controller/internal/hasher"
	"github.com/boneyard93501/randomx-controller/internal/identity"
	"github.com/boneyard93501/randomx-controller/internal/keyblock"
	"github.com/boneyard93501/randomx-controller/internal/pool"
	"github.com/boneyard93501/randomx-controller/internal/puzzle"
	"github.com/boneyard93501/randomx-controller/internal/rxlog"
	"github.com/boneyard93501/randomx-controller/internal/rxmetrics"
	"github.com/boneyard93501/randomx-controller/internal/worker"
)

const (
	// MainLoopSleep is the nominal control-tick period (main.rs:
	// MAIN_LOOP_SLEEP, 6 seconds).
	MainLoopSleep = 6 * time.Second
	// KeyBlockCheckInterval gates how often the oracle is consulted
	// (main.rs: KEYBLOCK_CHECK_INTERVAL, 30 minutes).
	KeyBlockCheckInterval = 30 * time.Minute
	// CapacitySettleDelay is how long the supervisor waits for workers
	// to observe a park request before logging the new snapshot
	// (main.rs sleeps 3s here).
	CapacitySettleDelay = 3 * time.Second
	// ReadyPollInterval is how often the supervisor polls up_counter
	// while waiting for a target readiness level.
	ReadyPollInterval = 100 * time.Millisecond
	// TeardownBudget is the hard shutdown timeout (spec.md §5).
	TeardownBudget = 15 * time.Second
)

// Signer is the subset of signer.KeyPair the supervisor and its
// workers need.
type Signer interface {
	Sign(data []byte) []byte
}

// Config bundles everything Supervisor needs to build and run the
// pool.
type Config struct {
	Setup          *config.Setup
	RuntimeCfgPath string
	Oracle         keyblock.Oracle
	Signer         Signer
	PeerID         string
	HasherFactory  hasher.Factory
	Sink           *puzzle.Sink
	SolutionBuffer int // channel capacity; 0 means a sane default
}

// Supervisor runs the INIT -> SPAWNING -> RUNNING (<-> ROTATING /
// capacity-delta) -> DRAINING state machine from spec.md §4.5.
type Supervisor struct {
	cfg Config
	log rxlog.Logger

	registry *pool.Registry
	flags    *pool.Flags
	idGen    *identity.Generator
	hashrate *rxmetrics.Registry

	solutions chan *puzzle.Solution
	wg        sync.WaitGroup

	sigCh <-chan struct{}
}

// New builds a Supervisor. sigCh is expected to receive (and coalesce)
// termination notifications; the caller owns installing the actual
// signal handler (spec.md treats signal installation as external,
// §1 non-goals).
func New(cfg Config, sigCh <-chan struct{}) *Supervisor {
	bufSize := cfg.SolutionBuffer
	if bufSize <= 0 {
		bufSize = 256
	}
	maxWorkers := cfg.Setup.MaxWorkers()
	allocWorkers := maxWorkers

	return &Supervisor{
		cfg:       cfg,
		log:       rxlog.New("component", "supervisor"),
		registry:  pool.NewRegistry(),
		flags:     pool.NewFlags(maxWorkers, allocWorkers, cfg.Setup.Difficulty),
		idGen:     identity.NewGenerator(cfg.PeerID),
		hashrate:  rxmetrics.NewRegistry(),
		solutions: make(chan *puzzle.Solution, bufSize),
		sigCh:     sigCh,
	}
}

// applyRuntime computes alloc_workers from a runtime config, clamping
// an over-large deallocation request to 0 and logging (spec.md §4.5
// startup step 2: "If the deallocation exceeds max_workers, log and
// ignore (treat as 0)").
func (s *Supervisor) applyRuntime(rt *config.Runtime) uint32 {
	maxWorkers := s.flags.MaxWorkers.Load()
	dealloc := rt.DeallocatedThreads
	if dealloc > maxWorkers {
		s.log.Error("invalid thread de-allocation, ignoring", "requested", dealloc, "max", maxWorkers)
		dealloc = 0
	}
	alloc := maxWorkers - dealloc
	s.flags.AllocWorkers.Store(alloc)
	return alloc
}

// Startup runs spec.md §4.5's startup sequence: load runtime config,
// fetch the initial key block, spawn alloc_workers workers, and block
// until they're all ready.
func (s *Supervisor) Startup() error {
	rt, err := config.LoadRuntime(s.cfg.RuntimeCfgPath)
	if err != nil {
		// Startup-fatal per the error taxonomy: the runtime config
		// must exist for the process to know its initial capacity.
		return err
	}
	allocWorkers := s.applyRuntime(rt)

	keyBlock, _, err := s.cfg.Oracle.Fetch(s.cfg.Setup.KeyBlockchainURI)
	if err != nil {
		return err
	}
	s.flags.CurrentKeyBlock.Store(keyBlock)

	s.log.Info("spawning initial worker pool", "count", allocWorkers, "key_block", keyBlock)
	s.spawnFresh(allocWorkers, keyBlock, s.flags.Generation.Load())
	s.waitForReady(func() uint32 { return allocWorkers })
	s.log.Info("randomx datasets initialized", "ready", s.registry.Ready())
	return nil
}

// Run drives the main control loop until a termination signal is
// observed, then tears down and returns.
func (s *Supervisor) Run() {
	ticker := time.NewTicker(MainLoopSleep)
	defer ticker.Stop()
	lastKeyBlockCheck := time.Now()

	s.log.Info("entering main control loop")
	for {
		select {
		case <-s.sigCh:
			s.log.Info("received termination signal, shutting down")
			s.flags.AppExit.Store(true)
			s.drainSolutions()
			s.teardown()
			return
		case <-ticker.C:
			if time.Since(lastKeyBlockCheck) >= KeyBlockCheckInterval {
				s.checkKeyBlockRotation()
				lastKeyBlockCheck = time.Now()
			}
			s.adjustCapacity()
			s.drainSolutions()
			s.log.Debug("pool hashrate", "hashes_per_sec", s.hashrate.Total().Rate1())
		}
	}
}

// checkKeyBlockRotation implements spec.md §4.5 main-tick step 1.
func (s *Supervisor) checkKeyBlockRotation() {
	keyBlock, changed, err := s.cfg.Oracle.Fetch(s.cfg.Setup.KeyBlockchainURI)
	if err != nil {
		s.log.Warn("key block fetch failed, keeping current key block", "err", err)
		return
	}
	if !changed {
		return
	}
	s.log.Info("key block rotated, restarting randomx workers", "key_block", keyBlock)

	target := uint32(len(s.registry.Snapshot().Alloc))
	s.registry.BeginRotation()
	s.flags.CurrentKeyBlock.Store(keyBlock)

	// Bump the generation once, rather than setting and clearing a
	// restart flag: every worker spawned from here on is born already
	// matching the new generation, and every worker spawned before
	// this call permanently mismatches it, so it exits on its very
	// next loop iteration no matter how long that takes. There is no
	// window where a store can be missed or a fresh worker can
	// mistake the old rotation for its own.
	gen := s.flags.Generation.Add(1)

	s.spawnFresh(target, keyBlock, gen)
	s.waitForReady(func() uint32 { return target })
	s.log.Info("randomx datasets re-initialized", "ready", s.registry.Ready())
}

// adjustCapacity implements spec.md §4.5 main-tick step 2.
func (s *Supervisor) adjustCapacity() {
	rt, err := config.LoadRuntime(s.cfg.RuntimeCfgPath)
	if err != nil {
		s.log.Warn("runtime config read failed, keeping current capacity", "err", err)
		return
	}

	snap := s.registry.Snapshot()
	parked := uint32(len(snap.Dealloc))
	requested := rt.DeallocatedThreads
	maxWorkers := s.flags.MaxWorkers.Load()

	switch {
	case requested > parked:
		if requested > maxWorkers {
			s.log.Warn("invalid thread reduction request ignored", "requested", requested, "max", maxWorkers)
			return
		}
		delta := requested - parked
		s.log.Info("reducing worker count", "by", delta)
		s.registry.SetDeallocRequests(delta)
		time.Sleep(CapacitySettleDelay)

		snap2 := s.registry.Snapshot()
		s.log.Info("updated registry snapshot", "alloc", len(snap2.Alloc), "dealloc", len(snap2.Dealloc))

	case requested < parked:
		delta := parked - requested
		s.log.Info("increasing worker count", "by", delta)
		reactivated := append([]string(nil), snap.Dealloc[:delta]...)
		// Wait for the workers already running plus every reactivated one.
		want := uint32(len(snap.Alloc)) + delta

		s.spawnReactivated(reactivated, s.flags.CurrentKeyBlock.Load(), s.flags.Generation.Load())
		s.waitForReady(func() uint32 { return want })
		s.registry.Reactivate(reactivated)

		s.log.Info("worker count increased", "ready", s.registry.Ready())

	default:
		// No-op: requested == parked.
	}
}

// drainSolutions implements spec.md §4.5 main-tick step 3.
func (s *Supervisor) drainSolutions() {
	for {
		select {
		case sol := <-s.solutions:
			if err := s.cfg.Sink.Write(sol); err != nil {
				s.log.Error("failed to write solution", "err", err)
			}
		default:
			return
		}
	}
}

// teardown implements spec.md §5's hard 15s shutdown budget: wait for
// every worker goroutine to exit, then return regardless.
func (s *Supervisor) teardown() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("all workers exited cleanly")
	case <-time.After(TeardownBudget):
		s.log.Warn("teardown budget exceeded, exiting anyway")
	}
}

// waitForReady polls up_counter until it reaches target(); target is
// re-evaluated on every poll. A target read from len(alloc_set) alone
// does not work for reactivation: until the new workers register,
// alloc_set and up_counter both still hold the old count and the wait
// would end at once, so adjustCapacity passes the expected total. The
// readiness wait is unbounded per spec.md §5.
func (s *Supervisor) waitForReady(target func() uint32) {
	s.log.Info("waiting for randomx datasets to initialize, this takes a while")
	for s.registry.Ready() != int32(target()) {
		time.Sleep(ReadyPollInterval)
	}
}

// spawnFresh starts n workers under brand-new identities bound to
// keyBlock, tagged with gen.
func (s *Supervisor) spawnFresh(n uint32, keyBlock uint64, gen uint64) {
	for i := uint32(0); i < n; i++ {
		s.spawnOne(s.idGen.Next(), keyBlock, gen)
	}
}

// spawnReactivated starts workers under previously-parked identities,
// preserving them across the transition (spec.md §4.5 "Spawn
// contract"), tagged with gen.
func (s *Supervisor) spawnReactivated(identities []string, keyBlock uint64, gen uint64) {
	for _, id := range identities {
		s.spawnOne(id, keyBlock, gen)
	}
}

func (s *Supervisor) spawnOne(identity string, keyBlock uint64, gen uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		worker.Run(identity, keyBlock, worker.Deps{
			Factory:    s.cfg.HasherFactory,
			Signer:     s.cfg.Signer,
			Registry:   s.registry,
			Flags:      s.flags,
			Solutions:  s.solutions,
			PeerID:     s.cfg.PeerID,
			Hashrate:   s.hashrate.Total(),
			Generation: gen,
		})
	}()
}

// Snapshot exposes the registry's current state, for tests and for an
// operator-facing status surface.
func (s *Supervisor) Snapshot() pool.Snapshot {
	return s.registry.Snapshot()
}

// Flags exposes the shared flags, for tests.
func (s *Supervisor) Flags() *pool.Flags {
	return s.flags
}
