package identity

import "testing"

// TestNextIsUnique covers I4: a single generator must never repeat an
// identity across many successive spawns, including ones that would
// correspond to respawns across key-block rotations.
func TestNextIsUnique(t *testing.T) {
	g := NewGenerator("peer-1")
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if seen[id] {
			t.Fatalf("duplicate identity %q generated at iteration %d", id, i)
		}
		seen[id] = true
	}
}

func TestDifferentGeneratorsDontCollide(t *testing.T) {
	g1 := NewGenerator("peer-1")
	g2 := NewGenerator("peer-1")

	for i := 0; i < 100; i++ {
		if g1.Next() == g2.Next() {
			t.Fatal("two generators for the same peer id must not produce the same identity")
		}
	}
}
