// Package hasher adapts the opaque RandomX hashing library to the
// streaming contract spec.md §4.1 requires: context(seed, full) once
// per worker per key-block epoch, then a pipelined hash_first/hash_next
// where hash_next(n) returns the digest of the *previous* nonce, not
// the one just submitted. RandomX itself is treated as opaque per
// spec.md §1; github.com/opd-ai/go-randomx supplies the actual hashing,
// grounded on the pure-Go RandomX implementation retrieved alongside
// this spec.
package hasher

import "github.com/opd-ai/go-randomx"

// Digest is a fixed-width RandomX output.
type Digest = [32]byte

// Streamer is the minimal pipelined hashing contract workers depend
// on, satisfied by *Hasher and by the mock hasher in mock.go.
type Streamer interface {
	HashFirst(nonce []byte)
	HashNext(next []byte) Digest
}

// Ctx is the minimal per-epoch context contract workers depend on,
// satisfied by *Context and by the mock context in mock.go.
type Ctx interface {
	NewHasher() Streamer
	Verify(nonce []byte) Digest
	Close() error
}

// Factory builds Ctx instances from a seed, matching spec.md §4.1's
// `context(seed, full_dataset) -> Context`.
type Factory interface {
	NewContext(seed []byte, fullDataset bool) (Ctx, error)
}

// RandomXFactory is the production Factory, backed by the real
// RandomX library.
type RandomXFactory struct{}

// NewContext implements Factory.
func (RandomXFactory) NewContext(seed []byte, fullDataset bool) (Ctx, error) {
	return NewContext(seed, fullDataset)
}

// Context owns an expensive RandomX cache/dataset. full_dataset=true
// allocates the full GiB-scale dataset (dataset-init, seconds to tens
// of seconds); false builds a light, cache-only context suitable for
// single-shot verification.
type Context struct {
	rx *randomx.Hasher
}

// NewContext builds a context from seed. Must be called exactly once
// per worker per key-block epoch (spec.md §4.1).
func NewContext(seed []byte, fullDataset bool) (*Context, error) {
	mode := randomx.LightMode
	if fullDataset {
		mode = randomx.FastMode
	}
	rx, err := randomx.New(randomx.Config{
		Mode:     mode,
		Flags:    randomx.FlagDefault,
		CacheKey: seed,
	})
	if err != nil {
		return nil, err
	}
	return &Context{rx: rx}, nil
}

// Close releases the context's cache/dataset.
func (c *Context) Close() error {
	return c.rx.Close()
}

// NewHasher returns a cheap, single-thread-bound Hasher over this
// context.
func (c *Context) NewHasher() Streamer {
	return &Hasher{rx: c.rx}
}

// Verify computes a single-shot digest for nonce using this (light)
// context, for out-of-band solution verification.
func (c *Context) Verify(nonce []byte) Digest {
	return c.rx.Hash(nonce)
}

// Hasher streams nonces through one RandomX context. Hash_next must
// only be called after HashFirst; its return value is the digest of
// the nonce submitted on the *previous* call, preserving the pipelined
// contract rust_randomx::Hasher exposes (see original_source/pow.rs
// and spec.md §9 "Off-by-one in streaming hash").
type Hasher struct {
	rx      *randomx.Hasher
	pending []byte
	started bool
}

// HashFirst primes the pipeline. Must be called exactly once before
// any call to HashNext.
func (h *Hasher) HashFirst(nonce []byte) {
	h.pending = append([]byte(nil), nonce...)
	h.started = true
}

// HashNext submits next and returns the digest of the nonce from the
// previous call (HashFirst or the prior HashNext).
func (h *Hasher) HashNext(next []byte) Digest {
	if !h.started {
		panic("hasher: HashNext called before HashFirst")
	}
	digest := h.rx.Hash(h.pending)
	h.pending = append(h.pending[:0], next...)
	return digest
}

// LeadingZeros counts bits from the most-significant end of digest
// until the first 1-bit, per spec.md §4.1.
func LeadingZeros(digest Digest) int {
	count := 0
	for _, b := range digest {
		if b == 0 {
			count += 8
			continue
		}
		for i := 7; i >= 0; i-- {
			if b&(1<<uint(i)) == 0 {
				count++
			} else {
				return count
			}
		}
		return count
	}
	return count
}
