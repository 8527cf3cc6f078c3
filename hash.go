// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"crypto/sha256"
	"encoding/binary"
)

// hashPropertySet computes a deterministic content fingerprint for a
// node (spec §4.11): a change in any property value, any nested
// property set, or any object this node references (recursively, to
// the full depth of the reachable graph) changes the hash. The hash
// is a content fingerprint only, not a cryptographic commitment to
// the on-disk bytes. Recursion through object references terminates
// because, by the time Hash is called, the referenced graph has
// already been proven acyclic (objecttree.go's GetObjectReference).
func hashPropertySet(n *Node) []byte {
	h := sha256.New()
	if n == nil || n.ps == nil {
		return h.Sum(nil)
	}
	hashNodeInto(h, n)
	return h.Sum(nil)
}

func hashNodeInto(h interface{ Write([]byte) (int, error) }, n *Node) {
	ps := n.ps
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(ps.JCID))
	h.Write(buf[:4])

	for _, id := range ps.Order {
		prop := ps.Properties[id]
		binary.LittleEndian.PutUint32(buf[:4], uint32(prop.ID))
		buf[4] = byte(prop.Type)
		h.Write(buf[:5])

		switch prop.Type {
		case PropertyTypeBool:
			if prop.Bool {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		case PropertyTypeOneByte:
			h.Write([]byte{prop.U8})
		case PropertyTypeTwoBytes:
			binary.LittleEndian.PutUint16(buf[:2], prop.U16)
			h.Write(buf[:2])
		case PropertyTypeFourBytes:
			binary.LittleEndian.PutUint32(buf[:4], prop.U32)
			h.Write(buf[:4])
		case PropertyTypeEightBytes:
			binary.LittleEndian.PutUint64(buf[:8], prop.U64)
			h.Write(buf[:8])
		case PropertyTypeFourBytesLengthPrefixedData:
			h.Write(prop.Data)
		case PropertyTypeObjectID:
			// Hash the referenced object's own content, not just the
			// CompactID that happens to address it, so a content-only
			// change downstream still changes this hash.
			if child, ok := n.Child(id); ok {
				hashNodeInto(h, child)
			}
		case PropertyTypeArrayOfObjectIDs:
			for _, child := range n.Children(id) {
				hashNodeInto(h, child)
			}
		case PropertyTypeContextID:
			h.Write(prop.ContextID.GUID[:])
			binary.LittleEndian.PutUint32(buf[:4], prop.ContextID.N)
			h.Write(buf[:4])
		case PropertyTypeObjectSpaceID:
			h.Write(prop.ObjectSpaceID.GUID[:])
			binary.LittleEndian.PutUint32(buf[:4], prop.ObjectSpaceID.N)
			h.Write(buf[:4])
		case PropertyTypeArrayOfObjectSpaceIDs, PropertyTypeArrayOfContextIDs:
			for _, eg := range prop.ContextIDs {
				h.Write(eg.GUID[:])
				binary.LittleEndian.PutUint32(buf[:4], eg.N)
				h.Write(buf[:4])
			}
		case PropertyTypePropertySet:
			hashNodeInto(h, newNode(n.ctx, prop.PropertySet, NullExGUID))
		case PropertyTypeArrayOfPropertyValues:
			for _, inner := range prop.PropertySets {
				hashNodeInto(h, newNode(n.ctx, inner, NullExGUID))
			}
		}
	}
}
