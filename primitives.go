// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"encoding/binary"
	"fmt"
)

// GUID is a 16-byte identifier as defined by MS-DTYP.
type GUID [16]byte

// String renders the GUID in the canonical
// {XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX} form, matching how the
// original reader stringifies NotebookManagementEntityGuid values.
func (g GUID) String() string {
	return fmt.Sprintf("{%08x-%04x-%04x-%04x-%012x}",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		g[8:10],
		g[10:16])
}

// IsZero reports whether the GUID is all-zero.
func (g GUID) IsZero() bool {
	return g == GUID{}
}

// ExGUID is an Extended GUID: a (GUID, n) pair, per MS-ONESTORE 2.2.2.
type ExGUID struct {
	GUID GUID
	N    uint32
}

// NullExGUID is the sentinel "absent" ExGUID: the zero GUID with n=0.
var NullExGUID = ExGUID{}

// IsNull reports whether this is the sentinel null ExGUID.
func (e ExGUID) IsNull() bool {
	return e == NullExGUID
}

// String renders the ExGUID the way the original tool prints rids/oids.
func (e ExGUID) String() string {
	return fmt.Sprintf("%s, %d", e.GUID.String(), e.N)
}

// XOR computes the component-wise exclusive-or of two ExGUIDs. Used to
// derive conflict-space metadata object identifiers (spec §4.10 step 4,
// object_tree_builder.py lines 128-136).
func (e ExGUID) XOR(other ExGUID) ExGUID {
	var g GUID
	for i := range g {
		g[i] = e.GUID[i] ^ other.GUID[i]
	}
	return ExGUID{GUID: g, N: e.N ^ other.N}
}

// metadataSeedGUID is {22a8c031-3600-42ee-b714-d7acda2435e8}, the
// well-known seed used to derive a conflict space's metadata object OID
// from its ChildGraphSpaceElementNodes entry.
var metadataSeedGUID = ExGUID{
	GUID: GUID{0x31, 0xc0, 0xa8, 0x22, 0x00, 0x36, 0xee, 0x42,
		0xb7, 0x14, 0xd7, 0xac, 0xda, 0x24, 0x35, 0xe8},
	N: 0,
}

// VersionHistoryContextGUID is the well-known context id
// {7111497F-1B6B-4209-9491-C98B04CF4C5A}:1, identifying the
// version-history context revision of an object space (spec §3).
var VersionHistoryContextGUID = ExGUID{
	GUID: GUID{0x7f, 0x49, 0x11, 0x71, 0x6b, 0x1b, 0x09, 0x42,
		0x94, 0x91, 0xc9, 0x8b, 0x04, 0xcf, 0x4c, 0x5a},
	N: 1,
}

// CompactID is a (n uint8, index uint24) pair that resolves to an
// ExGUID through a revision's global ID table (spec §3, §4.3).
type CompactID struct {
	N     uint8
	Index uint32 // 24-bit value
}

// FileChunkRef is a (stp, cb) offset/length pair into the file image.
// A nil ref (both fields all-ones) means absent; a zero ref (both
// fields zero) means present but empty (spec §3).
type FileChunkRef struct {
	Stp uint64
	Cb  uint64
}

// IsNil reports whether the reference is the "absent" sentinel.
func (r FileChunkRef) IsNil() bool {
	return r.Stp == ^uint64(0) && r.Cb == ^uint64(0)
}

// IsZero reports whether the reference is present-but-empty.
func (r FileChunkRef) IsZero() bool {
	return r.Stp == 0 && r.Cb == 0
}

// FileTime64 is a Windows FILETIME: 100-ns ticks since 1601-01-01 UTC.
type FileTime64 uint64

const fileTimeUnixEpochDiff = 116444736000000000 // 1601-01-01 -> 1970-01-01, in 100ns ticks

// UnixSeconds converts the FILETIME to Unix epoch seconds.
func (f FileTime64) UnixSeconds() int64 {
	ticks := int64(f) - fileTimeUnixEpochDiff
	return ticks / 10000000
}
