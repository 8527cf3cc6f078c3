// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"errors"
	"testing"
)

// TestGetObjectReferenceDetectsCycle exercises spec §3's circular-
// reference invariant (spec §8 scenario 5): object A references
// object B, and B references A back, with neither ever completing
// construction through the other.
func TestGetObjectReferenceDetectsCycle(t *testing.T) {
	guidA := GUID{0xAA}
	guidB := GUID{0xBB}
	oidA := ExGUID{GUID: guidA, N: 1}
	oidB := ExGUID{GUID: guidB, N: 1}

	const propChild PropertyID = 0x12345

	// psA's child CompactID resolves (via table index 2) to oidB, and
	// psB's resolves (via index 1) back to oidA, so this is a genuine
	// two-object mutual cycle rather than either object self-referencing.
	psA := &PropertySet{
		JCID: JCIDPageNode,
		Properties: map[PropertyID]Property{
			propChild: {ID: propChild, Type: PropertyTypeObjectID, ObjectID: CompactID{N: 1, Index: 2}},
		},
		Order: []PropertyID{propChild},
	}
	psB := &PropertySet{
		JCID: JCIDPageNode,
		Properties: map[PropertyID]Property{
			propChild: {ID: propChild, Type: PropertyTypeObjectID, ObjectID: CompactID{N: 1, Index: 1}},
		},
		Order: []PropertyID{propChild},
	}

	table := &GlobalIDTable{entries: map[uint32]GUID{1: guidA, 2: guidB}}
	group := &ObjectGroup{
		ID: ExGUID{GUID: guidA, N: 99},
		objects: map[ExGUID]*PropertySet{
			oidA: psA,
			oidB: psB,
		},
		table: table,
	}

	rev := &RevisionManifest{
		GlobalIDTable: table,
		ObjectGroups:  map[ExGUID]*ObjectGroup{group.ID: group},
		RootObjects:   map[uint32]ExGUID{RootRoleContents: oidA},
	}

	_, err := newRevisionContext(nil, oidA, 0, rev)
	if !errors.Is(err, ErrCircularObjectReference) {
		t.Fatalf("newRevisionContext() with a mutual object reference = %v, want ErrCircularObjectReference", err)
	}
}

// TestGetObjectReferenceAllowsDiamond confirms that two independent
// paths to the same object (not a cycle) resolve without error and
// share the cached Node.
func TestGetObjectReferenceAllowsDiamond(t *testing.T) {
	guidA := GUID{0xCC}
	guidB := GUID{0xDD}
	guidC := GUID{0xEE}
	oidA := ExGUID{GUID: guidA, N: 1}
	oidB := ExGUID{GUID: guidB, N: 1}
	oidC := ExGUID{GUID: guidC, N: 1}

	const propLeft PropertyID = 0x111
	const propRight PropertyID = 0x222

	psA := &PropertySet{
		JCID: JCIDPageNode,
		Properties: map[PropertyID]Property{
			propLeft:  {ID: propLeft, Type: PropertyTypeObjectID, ObjectID: CompactID{N: 1, Index: 2}},
			propRight: {ID: propRight, Type: PropertyTypeObjectID, ObjectID: CompactID{N: 1, Index: 3}},
		},
		Order: []PropertyID{propLeft, propRight},
	}
	psB := &PropertySet{JCID: JCIDPageNode}
	psC := &PropertySet{
		JCID: JCIDPageNode,
		Properties: map[PropertyID]Property{
			propLeft: {ID: propLeft, Type: PropertyTypeObjectID, ObjectID: CompactID{N: 1, Index: 2}},
		},
		Order: []PropertyID{propLeft},
	}

	table := &GlobalIDTable{entries: map[uint32]GUID{1: guidA, 2: guidB, 3: guidC}}
	group := &ObjectGroup{
		ID: ExGUID{GUID: guidA, N: 99},
		objects: map[ExGUID]*PropertySet{
			oidA: psA,
			oidB: psB,
			oidC: psC,
		},
		table: table,
	}

	rev := &RevisionManifest{
		GlobalIDTable: table,
		ObjectGroups:  map[ExGUID]*ObjectGroup{group.ID: group},
		RootObjects:   map[uint32]ExGUID{RootRoleContents: oidA},
	}

	rc, err := newRevisionContext(nil, oidA, 0, rev)
	if err != nil {
		t.Fatalf("newRevisionContext() on a diamond-shaped graph failed: %v", err)
	}
	if len(rc.objects) != 3 {
		t.Errorf("len(rc.objects) = %d, want 3", len(rc.objects))
	}
}
