package puzzle

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCopiesSliceArguments(t *testing.T) {
	ctx := []byte{1, 2, 3}
	nonce := []byte{4, 5, 6}
	signedNonce := []byte{7, 8, 9}
	digest := []byte{10, 11, 12}

	sol := New("peer-1", 42, ctx, "worker-1", nonce, signedNonce, digest, 4)

	ctx[0] = 0xff
	nonce[0] = 0xff
	signedNonce[0] = 0xff
	digest[0] = 0xff

	if sol.SignedContext[0] == 0xff || sol.Nonce[0] == 0xff || sol.SignedNonce[0] == 0xff || sol.Hash[0] == 0xff {
		t.Fatal("Solution must not alias its constructor's byte slices")
	}
}

// TestSolutionJSONRoundTrip covers P6: a solution survives an encode/
// decode cycle with byte fields serialized as JSON arrays (serde's
// default Vec<u8> behavior), not hex strings.
func TestSolutionJSONRoundTrip(t *testing.T) {
	sol := New("peer-1", 42, []byte{1, 2}, "worker-1", []byte{3, 4}, []byte{5, 6}, []byte{7, 8}, 4)

	raw, err := json.Marshal(sol)
	require.NoError(t, err)

	var got Solution
	require.NoError(t, json.Unmarshal(raw, &got))

	require.Equal(t, sol.Nonce, got.Nonce)
	require.Equal(t, sol.KeyBlock, got.KeyBlock)
	require.Equal(t, sol.Difficulty, got.Difficulty)
}

// TestSolutionJSONUsesIntegerArraysNotBase64 guards against
// encoding/json's default []byte-as-base64-string behavior: the
// on-disk record must match puzzle.rs's serde Vec<u8> shape, a plain
// JSON array of integers.
func TestSolutionJSONUsesIntegerArraysNotBase64(t *testing.T) {
	sol := New("peer-1", 42, []byte{1, 2}, "worker-1", []byte{3, 4}, []byte{5, 6}, []byte{7, 8}, 4)

	raw, err := json.Marshal(sol)
	require.NoError(t, err)

	body := string(raw)
	require.True(t, strings.Contains(body, `"nonce":[3,4]`), "expected an integer array for nonce, got %s", body)
	require.True(t, strings.Contains(body, `"hash":[7,8]`), "expected an integer array for hash, got %s", body)
	require.False(t, strings.Contains(body, "=="), "found what looks like base64 padding in %s", body)
}
