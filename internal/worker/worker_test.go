package worker

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/boneyard93501/randomx-controller/internal/hasher"
	"github.com/boneyard93501/randomx-controller/internal/pool"
	"github.com/boneyard93501/randomx-controller/internal/puzzle"
)

type passthroughSigner struct{}

func (passthroughSigner) Sign(data []byte) []byte {
	return append([]byte("sig:"), data...)
}

// TestWorkerReportsPreviousNonceOnMatch pins scenario 2: a mock hasher
// scripted to return a matching digest on its third hash_next call must
// produce exactly one solution, and that solution's nonce must be the
// one submitted on the *second* hash_next call (the off-by-one
// contract means the third call's digest belongs to that nonce, not
// the one just submitted).
func TestWorkerReportsPreviousNonceOnMatch(t *testing.T) {
	miss := hasher.Digest{0xff}
	match := hasher.Digest{0x0f} // 4 leading zero bits

	factory := &hasher.MockFactory{Digests: [][32]byte{miss, miss, match}}

	var tick uint64
	old := clock
	clock = func() uint64 {
		tick++
		return tick
	}
	defer func() { clock = old }()

	registry := pool.NewRegistry()
	flags := pool.NewFlags(4, 4, 4)
	solutions := make(chan *puzzle.Solution, 4)

	deps := Deps{
		Factory:   factory,
		Signer:    passthroughSigner{},
		Registry:  registry,
		Flags:     flags,
		Solutions: solutions,
		PeerID:    "peer-1",
	}

	done := make(chan struct{})
	go func() {
		Run("worker-1", 0, deps)
		close(done)
	}()

	select {
	case sol := <-solutions:
		wantNonce := make([]byte, 8)
		binary.LittleEndian.PutUint64(wantNonce, 3)
		if string(sol.Nonce) != string(wantNonce) {
			t.Fatalf("solution nonce = %v, want %v (the second hash_next-submitted nonce)", sol.Nonce, wantNonce)
		}
		if sol.Difficulty != 4 {
			t.Fatalf("solution difficulty = %d, want 4", sol.Difficulty)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a solution")
	}

	flags.AppExit.Store(true)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not exit after AppExit was set")
	}

	select {
	case extra := <-solutions:
		t.Fatalf("expected exactly one solution, got a second: %+v", extra)
	default:
	}
}

// TestWorkerParksWhenRequested covers the park-before-restart-before-
// app-exit ordering: a worker with a pending dealloc request must park
// and exit, leaving the registry's dealloc_set holding its identity.
func TestWorkerParksWhenRequested(t *testing.T) {
	factory := &hasher.MockFactory{}
	registry := pool.NewRegistry()
	flags := pool.NewFlags(1, 1, 8)
	flags.Generation.Store(1) // this worker's own generation is 0: must be ignored, park takes priority
	solutions := make(chan *puzzle.Solution, 1)

	registry.SetDeallocRequests(1)

	done := make(chan struct{})
	go func() {
		Run("worker-1", 0, Deps{
			Factory:   factory,
			Signer:    passthroughSigner{},
			Registry:  registry,
			Flags:     flags,
			Solutions: solutions,
			PeerID:    "peer-1",
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not park and exit")
	}

	snap := registry.Snapshot()
	if len(snap.Dealloc) != 1 || snap.Dealloc[0] != "worker-1" {
		t.Fatalf("expected worker-1 parked, got snapshot %+v", snap)
	}
}
