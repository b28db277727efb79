package hasher

import "testing"

func TestLeadingZerosAllZero(t *testing.T) {
	var d Digest
	if got := LeadingZeros(d); got != 256 {
		t.Fatalf("expected 256 leading zero bits for an all-zero digest, got %d", got)
	}
}

func TestLeadingZerosNibble(t *testing.T) {
	d := Digest{0x0f}
	if got := LeadingZeros(d); got != 4 {
		t.Fatalf("expected 4 leading zero bits for 0x0f, got %d", got)
	}
}

func TestLeadingZerosNone(t *testing.T) {
	d := Digest{0xff}
	if got := LeadingZeros(d); got != 0 {
		t.Fatalf("expected 0 leading zero bits for 0xff, got %d", got)
	}
}

// TestMockFactoryOffByOne pins the pipelined hash_next contract: the
// digest returned on a given HashNext call belongs to the nonce
// submitted on the *previous* call, never the one just submitted.
func TestMockFactoryOffByOne(t *testing.T) {
	d1 := Digest{0x01}
	d2 := Digest{0x02}
	f := &MockFactory{Digests: [][32]byte{d1, d2}}

	ctx, err := f.NewContext(nil, true)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	h := ctx.NewHasher()
	h.HashFirst([]byte("nonce-1"))

	got1 := h.HashNext([]byte("nonce-2"))
	if got1 != d1 {
		t.Fatalf("first HashNext call should return the first scripted digest, got %v", got1)
	}

	got2 := h.HashNext([]byte("nonce-3"))
	if got2 != d2 {
		t.Fatalf("second HashNext call should return the second scripted digest, got %v", got2)
	}

	// Script exhausted: further calls must fall back to the sentinel
	// miss digest rather than panicking or repeating.
	got3 := h.HashNext([]byte("nonce-4"))
	if got3 != missDigest {
		t.Fatalf("expected the miss sentinel once the script is exhausted, got %v", got3)
	}
}

func TestHashNextBeforeHashFirstPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected HashNext before HashFirst to panic")
		}
	}()
	f := &MockFactory{}
	ctx, _ := f.NewContext(nil, true)
	h := ctx.NewHasher()
	h.HashNext([]byte("x"))
}
