// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

// objectSpaceManifestListAllowedNodes is the vocabulary for an object
// space's own manifest list: the context map entries followed by the
// revision-manifest-list reference (spec §4.7).
var objectSpaceManifestListAllowedNodes = map[FileNodeID]bool{
	ObjectSpaceManifestListStartFND:      true,
	RevisionManifestListReferenceFND:     true,
	RevisionRoleDeclarationFND:           true,
	RevisionRoleAndContextDeclarationFND: true,
}

// ObjectSpace groups every revision sharing one root object graph
// (spec §4.7): its gosid, its context map, and its decoded revisions
// keyed by rid. ContextMap maps each decoded rid to itself; the context
// ids carried by RevisionRoleAndContextDeclarationFND nodes are not
// recorded, so ContextRevisionID resolves a context id only when a
// revision has that same id as its rid.
type ObjectSpace struct {
	Gosid             ExGUID
	DefaultContextRid ExGUID
	ContextMap        map[ExGUID]ExGUID
	Revisions         map[ExGUID]*RevisionManifest
	Order             []ExGUID
}

// RevisionIDs returns every decoded rid in this object space, in
// on-disk discovery order.
func (s *ObjectSpace) RevisionIDs() []ExGUID {
	return s.Order
}

// GetRevision looks a revision up by rid.
func (s *ObjectSpace) GetRevision(rid ExGUID) (*RevisionManifest, bool) {
	r, ok := s.Revisions[rid]
	return r, ok
}

// DefaultRevision returns the object space's default (current)
// revision.
func (s *ObjectSpace) DefaultRevision() (*RevisionManifest, bool) {
	return s.GetRevision(s.DefaultContextRid)
}

// ContextRevisionID resolves a well-known context id (e.g.
// VersionHistoryContextGUID) to a revision id, if the context is
// populated.
func (s *ObjectSpace) ContextRevisionID(ctxID ExGUID) (ExGUID, bool) {
	rid, ok := s.ContextMap[ctxID]
	return rid, ok
}

// decodeObjectSpace decodes one ObjectSpaceManifestListStartFND stream:
// a gosid, one RevisionRole{,AndContext}DeclarationFND per known
// context (the plain variant declares the default context), and the
// revision-manifest-list reference.
func decodeObjectSpace(store *OneStoreFile, ref FileChunkRef) (*ObjectSpace, error) {
	l, err := NewFileNodeList(store, ref, objectSpaceManifestListAllowedNodes)
	if err != nil {
		return nil, err
	}

	start, ok, err := l.Next()
	if err != nil {
		return nil, err
	}
	if !ok || start.ID != ObjectSpaceManifestListStartFND {
		return nil, ErrUnexpectedFileNode
	}

	space := &ObjectSpace{
		Gosid:      start.GosidRoot,
		ContextMap: make(map[ExGUID]ExGUID),
	}

	var listRef *FileChunkRef
	for {
		node, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch node.ID {
		case RevisionRoleDeclarationFND:
			// Plain declaration: no explicit context id carried in the
			// node; the default context rid is discovered once the
			// revision-manifest-list is decoded (first-seen default
			// revision wins, matching the on-disk ordering guarantee
			// that a section's default revision is declared first).

		case RevisionRoleAndContextDeclarationFND:
			// The context id is read and discarded in
			// decodeFileNodeBody; ContextMap is filled below as an
			// identity map over the decoded rids.

		case RevisionManifestListReferenceFND:
			refCopy := node.Ref
			listRef = &refCopy

		default:
			return nil, ErrUnexpectedFileNode
		}
	}

	if listRef == nil {
		return nil, ErrUnexpectedFileNode
	}

	revisions, err := decodeRevisionManifestList(store, space.Gosid, *listRef)
	if err != nil {
		return nil, err
	}

	space.Revisions = make(map[ExGUID]*RevisionManifest, len(revisions))
	space.Order = make([]ExGUID, 0, len(revisions))
	for _, rev := range revisions {
		space.Revisions[rev.Rid] = rev
		space.Order = append(space.Order, rev.Rid)
	}
	if len(space.Order) > 0 {
		space.DefaultContextRid = space.Order[0]
	}
	for _, rid := range space.Order {
		space.ContextMap[rid] = rid
	}

	return space, nil
}
