// Package signer provides the keypair and signing/keccak primitives
// the puzzle protocol treats as opaque (spec.md §1: "the cryptographic
// signing and Keccak hashing (opaque)"). It is grounded on mocks::signer
// and hashers::keccak_hasher in pow.rs, backed by real libraries
// instead of reimplemented crypto: btcec for signing (already in the
// teacher's go.mod) and golang.org/x/crypto/sha3 for Keccak (already
// imported by the teacher's own consensus/keccak package).
package signer

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec"
	"golang.org/x/crypto/sha3"
)

// KeyPair wraps a secp256k1 keypair used to sign contexts and nonces
// and to derive the process's peer id.
type KeyPair struct {
	priv *btcec.PrivateKey
}

// Generate creates a fresh keypair.
func Generate() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

// FromBytes reconstructs a keypair from a raw 32-byte private scalar,
// as would be loaded from the setup config's "keypair" field.
func FromBytes(raw []byte) *KeyPair {
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return &KeyPair{priv: priv}
}

// PeerID derives a stable hex identifier from the public key, standing
// in for the libp2p-style base58 peer id the original PEERID static
// computed from a fluence_keypair::KeyPair.
func (k *KeyPair) PeerID() string {
	sum := sha256.Sum256(k.priv.PubKey().SerializeCompressed())
	return Hex(sum[:])
}

// Sign produces a deterministic signature over data. The puzzle
// protocol only needs the signature bytes themselves (as the
// "signed_context"/"signed_nonce" fields); it never verifies a chain
// of custody, so a compact ECDSA signature stands in for
// fluence_keypair's signing scheme.
func (k *KeyPair) Sign(data []byte) []byte {
	digest := sha256.Sum256(data)
	sig, err := k.priv.Sign(digest[:])
	if err != nil {
		// btcec.Sign only fails for a malformed key, which Generate/
		// FromBytes never produce.
		panic(err)
	}
	return sig.Serialize()
}

// Keccak hashes data with Keccak-256, grounded on
// hashers::keccak_hasher in pow.rs and on the teacher's own
// consensus/keccak package, which imports the same library for the
// same purpose.
func Keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// Hex encodes b as lowercase hex without a leading "0x", matching the
// filename convention used throughout the puzzle sink.
func Hex(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0f]
	}
	return string(out)
}
