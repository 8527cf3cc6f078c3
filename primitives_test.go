// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "testing"

func TestGUIDString(t *testing.T) {
	g := GUID{0x7f, 0x49, 0x11, 0x71, 0x6b, 0x1b, 0x09, 0x42,
		0x94, 0x91, 0xc9, 0x8b, 0x04, 0xcf, 0x4c, 0x5a}
	want := "{7111497f-1b6b-4209-9491-c98b04cf4c5a}"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestExGUIDXORIsSelfInverse(t *testing.T) {
	a := ExGUID{GUID: GUID{1, 2, 3}, N: 7}
	b := metadataSeedGUID
	if got := a.XOR(b).XOR(b); got != a {
		t.Errorf("XOR is not self-inverse: got %+v, want %+v", got, a)
	}
}

func TestExGUIDIsNull(t *testing.T) {
	if !(ExGUID{}).IsNull() {
		t.Errorf("zero-value ExGUID should be null")
	}
	if NullExGUID.IsNull() == false {
		t.Errorf("NullExGUID should be null")
	}
	if (ExGUID{N: 1}).IsNull() {
		t.Errorf("ExGUID with nonzero N should not be null")
	}
}

func TestFileChunkRefSentinels(t *testing.T) {
	nilRef := FileChunkRef{Stp: ^uint64(0), Cb: ^uint64(0)}
	if !nilRef.IsNil() {
		t.Errorf("all-ones FileChunkRef should be nil")
	}
	zeroRef := FileChunkRef{}
	if !zeroRef.IsZero() {
		t.Errorf("zero-value FileChunkRef should be zero")
	}
	if zeroRef.IsNil() {
		t.Errorf("zero-value FileChunkRef should not be nil")
	}
}

func TestFileTime64UnixSeconds(t *testing.T) {
	// 1601-01-01 itself should map to the negative of the epoch diff
	// in seconds.
	var epoch FileTime64
	if got, want := epoch.UnixSeconds(), int64(-11644473600); got != want {
		t.Errorf("UnixSeconds() at FILETIME epoch = %d, want %d", got, want)
	}
}
