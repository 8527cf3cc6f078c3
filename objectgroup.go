// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

// objectGroupAllowedNodes is the file-node vocabulary for an object
// group's own chunked stream (spec §4.4).
var objectGroupAllowedNodes = map[FileNodeID]bool{
	ObjectGroupStartFND:                        true,
	GlobalIdTableStartFNDX:                     true,
	GlobalIdTableStart2FND:                     true,
	GlobalIdTableEntryFNDX:                     true,
	GlobalIdTableEntry2FNDX:                     true,
	GlobalIdTableEntry3FNDX:                     true,
	GlobalIdTableEndFNDX:                        true,
	ObjectDeclarationFND:                        true,
	ObjectDeclarationFileData3RefCountFND:       true,
	ObjectDeclarationFileData3LargeRefCountFND:  true,
	ObjectGroupEndFND:                           true,
}

// ObjectGroup is a collection of property sets sharing a local
// CompactID namespace, decoded from its own file-node stream (spec
// §4.4).
type ObjectGroup struct {
	ID      ExGUID
	objects map[ExGUID]*PropertySet
	table   *GlobalIDTable
}

// GetObjectByOID returns the property set declared under oid in this
// group, if any.
func (g *ObjectGroup) GetObjectByOID(oid ExGUID) (*PropertySet, bool) {
	ps, ok := g.objects[oid]
	return ps, ok
}

// GetExGUIDByCompactID resolves a CompactID through this group's local
// global ID table.
func (g *ObjectGroup) GetExGUIDByCompactID(id CompactID) (ExGUID, error) {
	return g.table.Resolve(id)
}

// decodeObjectGroup decodes the object group chunk addressed by ref,
// resolving file-data declarations through store's file data store.
func decodeObjectGroup(store *OneStoreFile, ref FileChunkRef) (*ObjectGroup, error) {
	l, err := NewFileNodeList(store, ref, objectGroupAllowedNodes)
	if err != nil {
		return nil, err
	}

	node, ok, err := l.Next()
	if err != nil {
		return nil, err
	}
	if !ok || node.ID != ObjectGroupStartFND {
		return nil, ErrUnexpectedFileNode
	}

	group := &ObjectGroup{
		ID:      node.ObjectGroupID,
		objects: make(map[ExGUID]*PropertySet),
		table:   newGlobalIDTable(nil),
	}

	for {
		node, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnexpectedFileNode
		}

		switch node.ID {
		case GlobalIdTableStartFNDX, GlobalIdTableStart2FND:
			table, next, err := decodeGlobalIDTable(l, nil)
			if err != nil {
				return nil, err
			}
			group.table = table
			if err := handleObjectGroupNode(store, group, next); err != nil {
				return nil, err
			}

		case ObjectGroupEndFND:
			return group, nil

		default:
			if err := handleObjectGroupNode(store, group, node); err != nil {
				return nil, err
			}
		}
	}
}

func handleObjectGroupNode(store *OneStoreFile, group *ObjectGroup, node FileNode) error {
	switch node.ID {
	case ObjectDeclarationFND:
		oid, err := group.table.Resolve(node.CoidRoot)
		if err != nil {
			return err
		}
		bodyReader, err := store.sliceAt(node.Ref)
		if err != nil {
			return err
		}
		ps, err := decodePropertySet(bodyReader, JCID(node.RootRole))
		if err != nil {
			return err
		}
		group.objects[oid] = ps
		return nil

	case ObjectDeclarationFileData3RefCountFND, ObjectDeclarationFileData3LargeRefCountFND:
		if node.Ref.IsNil() || node.Ref.IsZero() {
			store.setFileData(node.FileDataGUID, nil)
			return nil
		}
		data, err := store.readChunk(node.Ref)
		if err != nil {
			return err
		}
		store.setFileData(node.FileDataGUID, data)
		return nil

	case ObjectGroupEndFND:
		return nil

	default:
		return ErrUnexpectedFileNode
	}
}
