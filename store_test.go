// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"encoding/binary"
	"testing"
)

// buildHeader assembles a minimal, synthetic OneStore header: the
// file-type GUID, two 16-byte GUIDs the parser skips, the well-known
// format GUID, padding out to fcrFileNodeListRoot's offset, and a
// FileChunkRef64x32 pointing past the header (spec §4.9).
func buildHeader(fileType GUID, root FileChunkRef) []byte {
	buf := make([]byte, headerFileNodeListRootOffset+12)
	copy(buf[0:16], fileType[:])
	copy(buf[48:64], fileFormatGUID[:])

	binary.LittleEndian.PutUint64(buf[headerFileNodeListRootOffset:], root.Stp)
	binary.LittleEndian.PutUint32(buf[headerFileNodeListRootOffset+8:], uint32(root.Cb))
	return buf
}

func TestOpenBytesRejectsUnknownFileType(t *testing.T) {
	data := buildHeader(GUID{0xde, 0xad}, FileChunkRef{Stp: 200, Cb: 10})
	if _, err := OpenBytes(data); err != ErrInvalidFile {
		t.Errorf("OpenBytes() with an unrecognized file type = %v, want ErrInvalidFile", err)
	}
}

func TestOpenBytesRejectsWrongFormatGUID(t *testing.T) {
	data := buildHeader(sectionFileTypeGUID, FileChunkRef{Stp: 200, Cb: 10})
	wrongFormat := GUID{0x01}
	copy(data[48:64], wrongFormat[:])
	if _, err := OpenBytes(data); err != ErrInvalidFile {
		t.Errorf("OpenBytes() with a wrong format GUID = %v, want ErrInvalidFile", err)
	}
}

func TestOpenBytesParsesSectionHeader(t *testing.T) {
	data := buildHeader(sectionFileTypeGUID, FileChunkRef{Stp: 200, Cb: 10})
	store, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	if store.Kind != FileKindSection {
		t.Errorf("Kind = %v, want FileKindSection", store.Kind)
	}
	if store.rootRef.Stp != 200 || store.rootRef.Cb != 10 {
		t.Errorf("rootRef = %+v, want {Stp:200 Cb:10}", store.rootRef)
	}
}

func TestOpenBytesParsesTOC2Header(t *testing.T) {
	data := buildHeader(toc2FileTypeGUID, FileChunkRef{Stp: 200, Cb: 10})
	store, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	if store.Kind != FileKindTOC2 {
		t.Errorf("Kind = %v, want FileKindTOC2", store.Kind)
	}
}

func TestOpenBytesRejectsNilRootRef(t *testing.T) {
	data := buildHeader(sectionFileTypeGUID, FileChunkRef{Stp: ^uint64(0), Cb: ^uint64(0)})
	if _, err := OpenBytes(data); err != ErrInvalidFile {
		t.Errorf("OpenBytes() with a nil root ref = %v, want ErrInvalidFile", err)
	}
}

func TestFileDataRoundTrip(t *testing.T) {
	data := buildHeader(sectionFileTypeGUID, FileChunkRef{Stp: 200, Cb: 10})
	store, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes() failed: %v", err)
	}
	id := GUID{0x01, 0x02}
	store.setFileData(id, []byte("hello"))
	got, ok := store.FileData(id)
	if !ok || string(got) != "hello" {
		t.Errorf("FileData() = (%q, %v), want (\"hello\", true)", got, ok)
	}
	if _, ok := store.FileData(GUID{0x09}); ok {
		t.Errorf("FileData() for an undeclared guid should miss")
	}
}
