// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

// Root roles a revision can publish under RootObjects (spec §4.6, MS-
// ONESTORE 2.1.8).
const (
	RootRoleContents         uint32 = 1
	RootRolePageMetadata     uint32 = 2
	RootRoleRevisionMetadata uint32 = 4
)

// RevisionManifest is one assembled revision of an object space (spec
// §4.6): its own global id table (possibly inherited from a dependent
// revision), the object groups declared directly under it, and the
// root objects published for each role.
type RevisionManifest struct {
	Rid          ExGUID
	RidDependent ExGUID
	OdcsDefault  uint8

	DepRevision        *RevisionManifest
	GlobalIDTable      *GlobalIDTable
	ObjectGroups       map[ExGUID]*ObjectGroup
	RootObjects        map[uint32]ExGUID
	DataSignatureGroup ExGUID
}

// GetRootObjectID returns the object id published for role, if any.
func (m *RevisionManifest) GetRootObjectID(role uint32) (ExGUID, bool) {
	id, ok := m.RootObjects[role]
	return id, ok
}

// GetObjectByOID looks an object id up across every object group
// declared directly under this revision (spec §4.6).
func (m *RevisionManifest) GetObjectByOID(oid ExGUID) (*PropertySet, bool) {
	for _, g := range m.ObjectGroups {
		if ps, ok := g.GetObjectByOID(oid); ok {
			return ps, true
		}
	}
	return nil, false
}

// decodeRevisionManifestList decodes the revision-manifest-list stream
// of one object space (spec §4.6) and returns its revisions in on-disk
// order. Each revision's RidDependent is resolved by rid against the
// revisions decoded before it in the same list, not positionally.
func decodeRevisionManifestList(store *OneStoreFile, gosid ExGUID, ref FileChunkRef) ([]*RevisionManifest, error) {
	var allowed map[FileNodeID]bool
	switch store.Kind {
	case FileKindTOC2:
		allowed = Toc2RevisionManifestListNodes
	default:
		allowed = NotebookRevisionManifestListNodes
	}

	l, err := NewFileNodeList(store, ref, allowed)
	if err != nil {
		return nil, err
	}

	start, ok, err := l.Next()
	if err != nil {
		return nil, err
	}
	if !ok || start.ID != RevisionManifestListStartFND {
		return nil, ErrUnexpectedFileNode
	}
	if start.GosidRoot != gosid {
		return nil, ErrUnexpectedFileNode
	}

	revisions := make(map[ExGUID]*RevisionManifest)
	var order []*RevisionManifest

	for {
		node, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return order, nil
		}

		switch node.ID {
		case RevisionManifestStart4FND, RevisionManifestStart6FND, RevisionManifestStart7FND:
			rev, err := decodeRevisionManifest(store, l, node, revisions)
			if err != nil {
				return nil, err
			}
			revisions[rev.Rid] = rev
			order = append(order, rev)

		case RevisionRoleDeclarationFND, RevisionRoleAndContextDeclarationFND:
			continue

		default:
			return nil, ErrUnexpectedFileNode
		}
	}
}

// decodeRevisionManifest decodes one revision starting from its
// already-consumed Start{4,6,7}FND node, grounded on
// revision_manifest_list.py's RevisionManifest.__init__.
func decodeRevisionManifest(store *OneStoreFile, l *FileNodeList, start FileNode, revisions map[ExGUID]*RevisionManifest) (*RevisionManifest, error) {
	m := &RevisionManifest{
		Rid:          start.Rid,
		RidDependent: start.RidDependent,
		OdcsDefault:  start.OdcsDefault,
		ObjectGroups: make(map[ExGUID]*ObjectGroup),
		RootObjects:  make(map[uint32]ExGUID),
	}

	var prevTable *GlobalIDTable
	if !m.RidDependent.IsNull() {
		dep, ok := revisions[m.RidDependent]
		if !ok {
			return nil, ErrRevisionMismatch
		}
		if dep.OdcsDefault != m.OdcsDefault {
			return nil, ErrRevisionMismatch
		}
		m.DepRevision = dep
		prevTable = dep.GlobalIDTable
		for role, oid := range dep.RootObjects {
			m.RootObjects[role] = oid
		}
	}

	node, ok, err := l.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnexpectedFileNode
	}
	if node.ID == ObjectDataEncryptionKeyV2FNDX {
		node, ok, err = l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnexpectedFileNode
		}
	}

	var lastGroup *ObjectGroup
	for node.ID != RevisionManifestEndFND {
		switch node.ID {
		case ObjectGroupListReferenceFND:
			if m.OdcsDefault != 0 {
				// Encrypted object group: content is unreadable without
				// the notebook's encryption key (spec §1 Non-goals).
				logger.Debugf("skipping encrypted object group %v in revision %v", node.ObjectGroupID, m.Rid)
				break
			}
			group, err := decodeObjectGroup(store, node.Ref)
			if err != nil {
				return nil, err
			}
			if group.ID != node.ObjectGroupID {
				return nil, ErrUnexpectedFileNode
			}
			m.ObjectGroups[node.ObjectGroupID] = group
			lastGroup = group

		case ObjectInfoDependencyOverridesFND:
			// Reference counts are irrelevant for read-only graph walks.

		case RootObjectReference2FNDX:
			if lastGroup == nil {
				return nil, ErrUnexpectedFileNode
			}
			oid, err := lastGroup.GetExGUIDByCompactID(node.CoidRoot)
			if err != nil {
				return nil, err
			}
			m.RootObjects[node.RootRole] = oid

		default:
			goto globalTablePhase
		}

		node, ok, err = l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnexpectedFileNode
		}
	}
	if prevTable != nil {
		m.GlobalIDTable = prevTable
	}
	return m, nil

globalTablePhase:
	if node.ID == GlobalIdTableStartFNDX || node.ID == GlobalIdTableStart2FND {
		table, next, err := decodeGlobalIDTable(l, prevTable)
		if err != nil {
			return nil, err
		}
		m.GlobalIDTable = table
		node = next
	} else if prevTable != nil {
		m.GlobalIDTable = prevTable
	}

	for node.ID != RevisionManifestEndFND {
		switch node.ID {
		case ObjectInfoDependencyOverridesFND:
			// Reference counts are irrelevant for read-only graph walks.

		case RootObjectReference3FND:
			m.RootObjects[node.RootRole] = node.OidRoot

		case DataSignatureGroupDefinitionFND:
			m.DataSignatureGroup = node.DataSignatureGroup

		case ObjectDeclarationWithRefCountFNDX, ObjectDeclarationWithRefCount2FNDX,
			ObjectRevisionWithRefCountFNDX, ObjectRevisionWithRefCount2FNDX:
			// Reserved for the table-of-contents structural vocabulary;
			// not required to reconstruct page content (spec §9). The
			// safe default is to skip with a logged warning.
			logger.Warnf("skipping reserved file node %v in revision %v", node.ID, m.Rid)

		case RootObjectReference2FNDX:
			if m.GlobalIDTable == nil {
				return nil, ErrUnexpectedFileNode
			}
			oid, err := m.GlobalIDTable.Resolve(node.CoidRoot)
			if err != nil {
				return nil, err
			}
			m.RootObjects[node.RootRole] = oid

		default:
			return nil, ErrUnexpectedFileNode
		}

		node, ok, err = l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnexpectedFileNode
		}
	}

	return m, nil
}
