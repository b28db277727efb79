// Package identity generates the stable hex worker identities
// described in spec.md §3 ("Worker identity: a stable hex string
// derived from the peer id and a per-spawn ordinal"), grounded on the
// mocks::ThreadId type referenced (but not defined) in pow.rs.
package identity

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/boneyard93501/randomx-controller/internal/signer"
	"github.com/pborman/uuid"
)

// Generator produces fresh, globally-unique (I4) worker identities for
// one process lifetime.
type Generator struct {
	peerID  string
	salt    []byte
	ordinal atomic.Uint64
}

// NewGenerator derives identities from peerID. A fresh session salt
// (seeded by a random UUID) is mixed in so that identities generated
// by two processes sharing a peer id never collide; this fills in
// where the original's lazily-initialized PEERID static left the
// per-process uniqueness story implicit.
func NewGenerator(peerID string) *Generator {
	sessionSalt := uuid.NewRandom()
	return &Generator{peerID: peerID, salt: []byte(sessionSalt)}
}

// Next returns the next identity in sequence: hex(keccak(peer_id ||
// salt || ordinal)). The ordinal counter is monotonic for the whole
// process lifetime, so identities generated across key-block
// rotations never repeat (spec.md §3: "Across respawns caused by
// key-block rotation, the identities may be freshly generated").
func (g *Generator) Next() string {
	ord := g.ordinal.Add(1)
	buf := make([]byte, 0, len(g.peerID)+len(g.salt)+8)
	buf = append(buf, g.peerID...)
	buf = append(buf, g.salt...)
	ordBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(ordBytes, ord)
	buf = append(buf, ordBytes...)
	return signer.Hex(signer.Keccak(buf))
}
