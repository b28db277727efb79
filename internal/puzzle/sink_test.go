package puzzle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/boneyard93501/randomx-controller/internal/signer"
)

// TestSinkWritesOneFilePerDigest covers P8: the filename is derived
// from the solution's digest, so distinct solutions never collide and
// the same digest always lands at the same path.
func TestSinkWritesOneFilePerDigest(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir)

	solA := New("peer-1", 1, []byte{1}, "worker-1", []byte{1}, []byte{1}, []byte{0xaa, 0xbb}, 4)
	solB := New("peer-1", 1, []byte{2}, "worker-2", []byte{2}, []byte{2}, []byte{0xcc, 0xdd}, 4)

	if err := sink.Write(solA); err != nil {
		t.Fatalf("write solA: %v", err)
	}
	if err := sink.Write(solB); err != nil {
		t.Fatalf("write solB: %v", err)
	}

	pathA := filepath.Join(dir, signer.Hex(solA.Hash)+".json")
	pathB := filepath.Join(dir, signer.Hex(solB.Hash)+".json")

	raw, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatalf("expected file at %s: %v", pathA, err)
	}
	var got Solution
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode %s: %v", pathA, err)
	}
	if got.WorkerName == nil || string(got.WorkerName) != "worker-1" {
		t.Fatalf("unexpected contents at %s: %+v", pathA, got)
	}

	if _, err := os.Stat(pathB); err != nil {
		t.Fatalf("expected file at %s: %v", pathB, err)
	}
}
