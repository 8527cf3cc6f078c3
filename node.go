// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "errors"

// Node is a typed document-tree node: a property set promoted by the
// object-tree builder, with accessor helpers that dereference object
// references through its owning revision context so cycles are caught
// at the point of construction (spec §4.8, §4.9).
type Node struct {
	ps  *PropertySet
	oid ExGUID
	ctx *RevisionContext
}

func newNode(ctx *RevisionContext, ps *PropertySet, oid ExGUID) *Node {
	return &Node{ps: ps, oid: oid, ctx: ctx}
}

// JCID returns the node's classifier.
func (n *Node) JCID() JCID { return n.ps.JCID }

// Kind names the node's JCID, falling back to a numeric label for
// unregistered JCIDs.
func (n *Node) Kind() string { return n.JCID().String() }

// OID returns the node's object id.
func (n *Node) OID() ExGUID { return n.oid }

// Get returns the raw property for id, if present.
func (n *Node) Get(id PropertyID) (Property, bool) {
	return n.ps.Get(id)
}

// String returns id's value decoded as a UTF-16 string, if present.
func (n *Node) String(id PropertyID) (string, bool) {
	p, ok := n.ps.Get(id)
	if !ok || p.Type != PropertyTypeFourBytesLengthPrefixedData {
		return "", false
	}
	s, err := p.AsUTF16String()
	if err != nil {
		return "", false
	}
	return s, true
}

// GUIDValue returns id's value reinterpreted as a raw 16-byte GUID
// blob (MS-ONE stores NotebookManagementEntityGuid this way).
func (n *Node) GUIDValue(id PropertyID) (GUID, bool) {
	p, ok := n.ps.Get(id)
	if !ok || len(p.Data) != 16 {
		return GUID{}, false
	}
	var g GUID
	copy(g[:], p.Data)
	return g, true
}

// U32 returns id's value as a four-byte integer, if present.
func (n *Node) U32(id PropertyID) (uint32, bool) {
	p, ok := n.ps.Get(id)
	if !ok {
		return 0, false
	}
	switch p.Type {
	case PropertyTypeOneByte:
		return uint32(p.U8), true
	case PropertyTypeTwoBytes:
		return uint32(p.U16), true
	case PropertyTypeFourBytes:
		return p.U32, true
	}
	return 0, false
}

// Bool returns id's inline boolean value, defaulting to false when
// absent.
func (n *Node) Bool(id PropertyID) bool {
	p, ok := n.ps.Get(id)
	if !ok || p.Type != PropertyTypeBool {
		return false
	}
	return p.Bool
}

// FileTime returns id's value as a FILETIME, if present.
func (n *Node) FileTime(id PropertyID) (FileTime64, bool) {
	p, ok := n.ps.Get(id)
	if !ok || p.Type != PropertyTypeEightBytes {
		return 0, false
	}
	return FileTime64(p.U64), true
}

// Child dereferences a single-object-reference property through the
// owning revision context.
func (n *Node) Child(id PropertyID) (*Node, bool) {
	p, ok := n.ps.Get(id)
	if !ok || p.Type != PropertyTypeObjectID {
		return nil, false
	}
	oid, err := n.resolveCompactID(p.ObjectID)
	if err != nil {
		return nil, false
	}
	child, err := n.ctx.GetObjectReference(oid)
	if err != nil || child == nil {
		return nil, false
	}
	return child, true
}

// Children dereferences an array-of-object-references property.
func (n *Node) Children(id PropertyID) []*Node {
	p, ok := n.ps.Get(id)
	if !ok || p.Type != PropertyTypeArrayOfObjectIDs {
		return nil
	}
	nodes := make([]*Node, 0, len(p.ObjectIDs))
	for _, cid := range p.ObjectIDs {
		oid, err := n.resolveCompactID(cid)
		if err != nil {
			continue
		}
		child, err := n.ctx.GetObjectReference(oid)
		if err != nil || child == nil {
			continue
		}
		nodes = append(nodes, child)
	}
	return nodes
}

// ObjectSpaceIDs returns an array-of-object-space-id property's raw
// gosids (spec §3, ChildGraphSpaceElementNodes).
func (n *Node) ObjectSpaceIDs(id PropertyID) []ExGUID {
	p, ok := n.ps.Get(id)
	if !ok {
		return nil
	}
	switch p.Type {
	case PropertyTypeArrayOfContextIDs, PropertyTypeArrayOfObjectSpaceIDs:
		return p.ContextIDs
	}
	return nil
}

// ContextID returns a single context-reference property's raw value.
func (n *Node) ContextID(id PropertyID) (ExGUID, bool) {
	p, ok := n.ps.Get(id)
	if !ok {
		return ExGUID{}, false
	}
	switch p.Type {
	case PropertyTypeContextID:
		return p.ContextID, true
	case PropertyTypeObjectSpaceID:
		return p.ObjectSpaceID, true
	}
	return ExGUID{}, false
}

func (n *Node) resolveCompactID(cid CompactID) (ExGUID, error) {
	if n.ctx.Revision.GlobalIDTable != nil {
		if oid, err := n.ctx.Revision.GlobalIDTable.Resolve(cid); err == nil {
			return oid, nil
		}
	}
	for _, g := range n.ctx.Revision.ObjectGroups {
		if oid, err := g.GetExGUIDByCompactID(cid); err == nil {
			return oid, nil
		}
	}
	return ExGUID{}, ErrObjectNotFound
}

// Hash returns the node's content hash (spec §4.11).
func (n *Node) Hash() []byte {
	return hashPropertySet(n)
}

// resolveReferences eagerly walks every object reference reachable
// from this node, including through nested inline property sets,
// forcing them through ctx.GetObjectReference so the caller's
// building-flag window actually spans the whole subtree rooted at
// this node (spec §3 invariant, §8 scenario 5). It only reports
// ErrCircularObjectReference; an unresolvable reference is left for
// Child/Children to report as absent later, matching their existing
// leniency.
func (n *Node) resolveReferences() error {
	for _, id := range n.ps.Order {
		prop, ok := n.ps.Get(id)
		if !ok {
			continue
		}
		switch prop.Type {
		case PropertyTypeObjectID:
			oid, err := n.resolveCompactID(prop.ObjectID)
			if err != nil {
				continue
			}
			if _, err := n.ctx.GetObjectReference(oid); errors.Is(err, ErrCircularObjectReference) {
				return err
			}

		case PropertyTypeArrayOfObjectIDs:
			for _, cid := range prop.ObjectIDs {
				oid, err := n.resolveCompactID(cid)
				if err != nil {
					continue
				}
				if _, err := n.ctx.GetObjectReference(oid); errors.Is(err, ErrCircularObjectReference) {
					return err
				}
			}

		case PropertyTypePropertySet:
			if err := newNode(n.ctx, prop.PropertySet, NullExGUID).resolveReferences(); err != nil {
				return err
			}

		case PropertyTypeArrayOfPropertyValues:
			for _, inner := range prop.PropertySets {
				if err := newNode(n.ctx, inner, NullExGUID).resolveReferences(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
