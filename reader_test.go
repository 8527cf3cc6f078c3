// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "testing"

func TestReaderU32(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0xAA, 0xBB}
	r := NewReader(data)

	got, err := r.U32()
	if err != nil {
		t.Fatalf("U32() failed: %v", err)
	}
	if want := uint32(0x04030201); got != want {
		t.Errorf("U32() = %#x, want %#x", got, want)
	}
	if r.Offset() != 4 {
		t.Errorf("Offset() = %d, want 4", r.Offset())
	}
}

func TestReaderEndOfBuffer(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.U32(); err != ErrEndOfBuffer {
		t.Errorf("U32() on short buffer = %v, want ErrEndOfBuffer", err)
	}
}

func TestReaderCompactID(t *testing.T) {
	// n=0x07, index=0x00ABCDEF packed as index<<8 | n.
	data := []byte{0x07, 0xEF, 0xCD, 0xAB}
	r := NewReader(data)
	cid, err := r.ReadCompactID()
	if err != nil {
		t.Fatalf("ReadCompactID() failed: %v", err)
	}
	if cid.N != 0x07 || cid.Index != 0x00ABCDEF {
		t.Errorf("ReadCompactID() = %+v, want N=0x07 Index=0x00ABCDEF", cid)
	}
}

func TestReaderFileChunkRef32NilSentinel(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	r := NewReader(data)
	ref, err := r.ReadFileChunkRef32()
	if err != nil {
		t.Fatalf("ReadFileChunkRef32() failed: %v", err)
	}
	if !ref.IsNil() {
		t.Errorf("ReadFileChunkRef32() with all-ones bytes should be nil, got %+v", ref)
	}
}

func TestReaderCloneRequiresTopLevel(t *testing.T) {
	r := NewReader(make([]byte, 32))
	sub, err := r.Clone(nil, 4, 8)
	if err != nil {
		t.Fatalf("Clone() failed: %v", err)
	}
	ref := FileChunkRef{Stp: 0, Cb: 4}
	if _, err := sub.Clone(&ref, 0, -1); err == nil {
		t.Errorf("Clone() from a non-top-level reader should fail")
	}
}

func TestReaderExtractSuffix(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	r := NewReader(data)
	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip() failed: %v", err)
	}
	tail, err := r.Extract(-2)
	if err != nil {
		t.Fatalf("Extract(-2) failed: %v", err)
	}
	got, err := tail.Bytes(2)
	if err != nil {
		t.Fatalf("Bytes() on extracted tail failed: %v", err)
	}
	if got[0] != 5 || got[1] != 6 {
		t.Errorf("Extract(-2) tail = %v, want [5 6]", got)
	}
	if r.Remaining() != 2 {
		t.Errorf("Remaining() after Extract(-2) = %d, want 2", r.Remaining())
	}
}
