// Package puzzle defines the immutable solution record and its file
// sink, grounded on puzzle.rs's PuzzleSolution and its to_file method.
package puzzle

import "encoding/json"

// ByteArray is a byte slice that marshals as a JSON array of integers
// (serde's default Vec<u8> behavior, e.g. "nonce":[1,2,3]) instead of
// encoding/json's default base64-string encoding for []byte. The
// on-disk solution record (spec.md §4.2, puzzle.rs's PuzzleSolution)
// is only valid in this integer-array shape.
type ByteArray []byte

// MarshalJSON implements json.Marshaler.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// Solution is immutable once constructed. Byte fields are ByteArray,
// not []byte, so they encode as JSON arrays of integers rather than
// base64 strings, per spec.md §4.2.
type Solution struct {
	PeerID        ByteArray `json:"peer_id"`
	KeyBlock      uint64    `json:"key_block"`
	SignedContext ByteArray `json:"signed_context"`
	WorkerName    ByteArray `json:"worker_name"`
	Nonce         ByteArray `json:"nonce"`
	SignedNonce   ByteArray `json:"signed_nonce"`
	Hash          ByteArray `json:"hash"`
	Difficulty    uint32    `json:"difficulty"`
}

// New constructs a Solution. nonceRaw is little-endian encoded, as the
// on-disk record stores the raw nonce bytes, not the integer.
func New(peerID string, keyBlock uint64, signedContext []byte, workerName string, nonceRawLE []byte, signedNonce, digest []byte, difficulty uint32) *Solution {
	return &Solution{
		PeerID:        ByteArray(peerID),
		KeyBlock:      keyBlock,
		SignedContext: append(ByteArray(nil), signedContext...),
		WorkerName:    ByteArray(workerName),
		Nonce:         append(ByteArray(nil), nonceRawLE...),
		SignedNonce:   append(ByteArray(nil), signedNonce...),
		Hash:          append(ByteArray(nil), digest...),
		Difficulty:    difficulty,
	}
}
