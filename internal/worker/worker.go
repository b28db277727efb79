// Package worker implements the mining inner loop (C3), grounded on
// randomx_fast_instance and thread_dealloc in pow.rs.
package worker

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/boneyard93501/randomx-controller/internal/hasher"
	"github.com/boneyard93501/randomx-controller/internal/pool"
	"github.com/boneyard93501/randomx-controller/internal/puzzle"
	"github.com/boneyard93501/randomx-controller/internal/rxlog"
	"github.com/boneyard93501/randomx-controller/internal/rxmetrics"
	"github.com/boneyard93501/randomx-controller/internal/signer"
)

// Signer is the minimal signing contract a worker needs.
type Signer interface {
	Sign(data []byte) []byte
}

// Deps bundles everything a worker shares with the rest of the
// process: no worker ever holds a reference to anything outside this
// struct.
type Deps struct {
	Factory   hasher.Factory
	Signer    Signer
	Registry  *pool.Registry
	Flags     *pool.Flags
	Solutions chan<- *puzzle.Solution
	PeerID    string
	// Hashrate is marked once per hash_next call, matching
	// consensus/keccak.Seal's keccak.hashrate.Mark(attempts) use of its
	// metrics.Meter field. Nil is valid and simply disables tracking.
	Hashrate rxmetrics.Meter
	// Generation is the pool generation this worker was spawned under.
	// The worker exits once Flags.Generation no longer matches this
	// value — a key-block rotation bumped past it — rather than
	// polling a restart flag the supervisor would otherwise have to
	// clear out from under the very generation it just spawned.
	Generation uint64
}

// clock is overridden in tests so nonce generation is deterministic.
var clock = func() uint64 { return uint64(time.Now().UnixMilli()) }

// Run is one worker's entire lifetime: register, build a full-dataset
// RandomX context for keyBlock, prime the streaming hasher, then loop
// until parked, restarted, or told to exit. It never returns an error;
// failures are logged and the worker simply exits, which the
// supervisor observes only indirectly through the registry (spec.md
// §7: "worker errors never propagate to the supervisor except via
// observable registry state").
func Run(identity string, keyBlock uint64, deps Deps) {
	log := rxlog.New("worker", identity)
	deps.Registry.Register(identity)

	contextSeed := deps.Signer.Sign(signer.Keccak([]byte(strconv.FormatUint(keyBlock, 10) + identity)))
	ctx, err := deps.Factory.NewContext(contextSeed, true)
	if err != nil {
		log.Error("dataset init failed, worker exiting", "err", err)
		return
	}
	defer ctx.Close()

	deps.Registry.IncReady()
	log.Info("hasher setup complete")

	h := ctx.NewHasher()
	difficulty := int(deps.Flags.PuzzleDifficulty.Load())

	prevRaw := clock() + keyBlock
	prevRawLE := leBytes(prevRaw)
	prevSigned := deps.Signer.Sign(prevRawLE)
	h.HashFirst(prevSigned)

	for {
		curRaw := clock() + keyBlock
		curRawLE := leBytes(curRaw)
		curSigned := deps.Signer.Sign(curRawLE)

		digest := h.HashNext(curSigned)
		if deps.Hashrate != nil {
			deps.Hashrate.Mark(1)
		}

		if hasher.LeadingZeros(digest) == difficulty {
			sol := puzzle.New(deps.PeerID, keyBlock, contextSeed, identity, prevRawLE, prevSigned, digest[:], uint32(difficulty))
			if !deps.trySend(sol) {
				log.Error("solution channel full, worker exiting")
				return
			}
		}

		prevRawLE, prevSigned = curRawLE, curSigned

		// Critical ordering (spec.md §4.5): park before restart before
		// app-exit, so at most one cause is ever attributed to an exit.
		if deps.Registry.TryPark(identity) {
			log.Info("parked")
			return
		}
		if deps.Flags.Generation.Load() != deps.Generation {
			log.Info("exiting for key-block rotation")
			return
		}
		if deps.Flags.AppExit.Load() {
			log.Info("exiting for shutdown")
			return
		}
	}
}

// trySend enqueues sol, retrying once before treating a persistently
// full channel as the fatal condition spec.md §4.3 step 3 requires.
func (d Deps) trySend(sol *puzzle.Solution) bool {
	select {
	case d.Solutions <- sol:
		return true
	default:
		select {
		case d.Solutions <- sol:
			return true
		default:
			return false
		}
	}
}

func leBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
