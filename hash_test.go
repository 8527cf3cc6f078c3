// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"bytes"
	"testing"
)

func TestHashPropertySetDeterministic(t *testing.T) {
	ps := &PropertySet{
		JCID:       JCIDPageMetaData,
		Order:      []PropertyID{PropPageLevel},
		Properties: map[PropertyID]Property{PropPageLevel: {ID: PropPageLevel, Type: PropertyTypeOneByte, U8: 2}},
	}
	n := newNode(nil, ps, NullExGUID)
	h1 := n.Hash()
	h2 := n.Hash()
	if !bytes.Equal(h1, h2) {
		t.Errorf("Hash() is not deterministic across calls")
	}
}

func TestHashPropertySetChangesWithValue(t *testing.T) {
	base := newNode(nil, &PropertySet{
		JCID:       JCIDPageMetaData,
		Order:      []PropertyID{PropPageLevel},
		Properties: map[PropertyID]Property{PropPageLevel: {ID: PropPageLevel, Type: PropertyTypeOneByte, U8: 2}},
	}, NullExGUID)
	changed := newNode(nil, &PropertySet{
		JCID:       JCIDPageMetaData,
		Order:      []PropertyID{PropPageLevel},
		Properties: map[PropertyID]Property{PropPageLevel: {ID: PropPageLevel, Type: PropertyTypeOneByte, U8: 3}},
	}, NullExGUID)
	if bytes.Equal(base.Hash(), changed.Hash()) {
		t.Errorf("Hash() did not change when a property value changed")
	}
}

func TestHashPropertySetNilIsStable(t *testing.T) {
	h1 := hashPropertySet(nil)
	h2 := hashPropertySet(nil)
	if !bytes.Equal(h1, h2) {
		t.Errorf("hashPropertySet(nil) is not stable")
	}
}

// TestHashChangesWithReferencedObjectContent confirms that a content
// change reachable only through an object reference still changes the
// parent's hash (spec §4.11; a prior bug only hashed the CompactID
// bytes addressing the child, not its content).
func TestHashChangesWithReferencedObjectContent(t *testing.T) {
	guidParent := GUID{0x01}
	guidChild := GUID{0x02}
	oidParent := ExGUID{GUID: guidParent, N: 1}
	oidChild := ExGUID{GUID: guidChild, N: 1}

	const propChild PropertyID = 0x333

	buildRevisionContext := func(childValue uint8) *RevisionContext {
		psParent := &PropertySet{
			JCID: JCIDPageNode,
			Properties: map[PropertyID]Property{
				propChild: {ID: propChild, Type: PropertyTypeObjectID, ObjectID: CompactID{N: 1, Index: 1}},
			},
			Order: []PropertyID{propChild},
		}
		psChild := &PropertySet{
			JCID:       JCIDPageMetaData,
			Properties: map[PropertyID]Property{PropPageLevel: {ID: PropPageLevel, Type: PropertyTypeOneByte, U8: childValue}},
			Order:      []PropertyID{PropPageLevel},
		}
		table := &GlobalIDTable{entries: map[uint32]GUID{1: guidChild}}
		group := &ObjectGroup{
			ID:      ExGUID{GUID: guidParent, N: 99},
			objects: map[ExGUID]*PropertySet{oidParent: psParent, oidChild: psChild},
			table:   table,
		}
		rev := &RevisionManifest{
			GlobalIDTable: table,
			ObjectGroups:  map[ExGUID]*ObjectGroup{group.ID: group},
		}
		return &RevisionContext{
			Revision: rev,
			objects:  make(map[ExGUID]*Node),
			building: make(map[ExGUID]bool),
		}
	}

	rc1 := buildRevisionContext(2)
	parent1, err := rc1.GetObjectReference(oidParent)
	if err != nil {
		t.Fatalf("GetObjectReference() failed: %v", err)
	}

	rc2 := buildRevisionContext(3)
	parent2, err := rc2.GetObjectReference(oidParent)
	if err != nil {
		t.Fatalf("GetObjectReference() failed: %v", err)
	}

	if bytes.Equal(parent1.Hash(), parent2.Hash()) {
		t.Errorf("Hash() did not change when a referenced object's content changed")
	}
}
