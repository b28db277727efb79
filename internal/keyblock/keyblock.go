// Package keyblock provides the key-block oracle interface. The real
// RPC to the key blockchain is an opaque external collaborator (see
// spec.md §1 non-goals); this package defines the interface the
// supervisor depends on plus a deterministic mock used by the
// production binary's default wiring and by tests.
package keyblock

import "sync"

// Oracle mirrors the original keyblock_handler(uri) -> (key_block,
// changed) contract: a pure function of current remote state that
// reports both the latest key block and whether it differs from the
// value the oracle last reported.
type Oracle interface {
	Fetch(uri string) (keyBlock uint64, changed bool, err error)
}

// MockOracle is a pure-Go stand-in for the remote key-block RPC. It
// reports a key block as "changed" exactly once per new value (on the
// first Fetch, and on the first Fetch after an Advance to a different
// key block), letting the rest of the system be exercised without
// network access.
type MockOracle struct {
	mu       sync.Mutex
	current  uint64
	reported bool
}

// NewMockOracle creates an oracle whose first Fetch reports initial
// with changed=true.
func NewMockOracle(initial uint64) *MockOracle {
	return &MockOracle{current: initial}
}

// Fetch implements Oracle.
func (m *MockOracle) Fetch(uri string) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := !m.reported
	m.reported = true
	return m.current, changed, nil
}

// Advance sets a new key block, to be reported as a change on the
// oracle's next Fetch call. Advancing to the current key block changes
// nothing.
func (m *MockOracle) Advance(keyBlock uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if keyBlock != m.current {
		m.current = keyBlock
		m.reported = false
	}
}
