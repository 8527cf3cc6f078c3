// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "sort"

// DataFile is a file-data-store blob exposed through the same
// directory shape as a page (spec §4.10 step 4, "data-store files").
type DataFile struct {
	Filename           string
	Data               []byte
	PagePersistentGUID string
}

// GetHash returns nil; data files do not contribute to a version's
// content fingerprint.
func (d *DataFile) GetHash() []byte { return nil }

// RevisionContext is a built revision: every root-role object resolved
// to a typed Node, plus the page identity, timestamp, and conflict
// metadata the history builder needs (spec §4.8, §4.10; grounded on
// object_tree_builder.py's RevisionBuilderCtx).
type RevisionContext struct {
	OSIndex     int
	GOSID       ExGUID
	Revision    *RevisionManifest
	RID         ExGUID
	IsEncrypted bool

	RevisionRoles map[uint32]*Node
	objects       map[ExGUID]*Node
	building      map[ExGUID]bool
	DataFiles     map[string]*DataFile

	LastModifiedTimestamp *FileTime64
	LastModifiedBy        string
	PagePersistentGUID    string
	PageTitle             string
	PageLevel             *uint32
	PageHash              []byte
	ConflictAuthor        string
	Conflicts             map[ExGUID]*Node

	store *OneStoreFile
}

func newRevisionContext(store *OneStoreFile, gosid ExGUID, osIndex int, rev *RevisionManifest) (*RevisionContext, error) {
	rc := &RevisionContext{
		OSIndex:       osIndex,
		GOSID:         gosid,
		Revision:      rev,
		RID:           rev.Rid,
		IsEncrypted:   rev.OdcsDefault != 0,
		RevisionRoles: make(map[uint32]*Node),
		objects:       make(map[ExGUID]*Node),
		building:      make(map[ExGUID]bool),
		DataFiles:     make(map[string]*DataFile),
		Conflicts:     make(map[ExGUID]*Node),
		PageTitle:     "notitle",
		store:         store,
	}

	for role, oid := range rev.RootObjects {
		root, err := rc.GetObjectReference(oid)
		if err != nil {
			return nil, err
		}
		rc.RevisionRoles[role] = root
		if root == nil {
			continue
		}

		switch role {
		case RootRoleRevisionMetadata:
			if rc.ConflictAuthor == "" {
				if ts, ok := root.FileTime(PropLastModifiedTimeStamp); ok {
					rc.LastModifiedTimestamp = &ts
				}
			}
			if author, ok := root.Child(PropAuthorMostRecent); ok {
				if name, ok := author.String(PropAuthor); ok {
					rc.LastModifiedBy = name
				}
			}

		case RootRolePageMetadata:
			if guid, ok := root.GUIDValue(PropNotebookManagementEntityGuid); ok {
				rc.PagePersistentGUID = guid.String()
			}
			if title, ok := root.String(PropCachedTitleString); ok {
				rc.PageTitle = title
			}
			if level, ok := root.U32(PropPageLevel); ok {
				rc.PageLevel = &level
			}
			rc.PageHash = append(rc.PageHash, root.Hash()...)
			if root.Bool(PropHasConflictPages) {
				if author, ok := root.String(PropConflictingUserName); ok {
					rc.ConflictAuthor = author
				}
			}
			if rc.ConflictAuthor != "" {
				if ts, ok := root.FileTime(PropTopologyCreationTimeStamp); ok {
					rc.LastModifiedTimestamp = &ts
				}
			}

		case RootRoleContents:
			rc.PageHash = append(rc.PageHash, root.Hash()...)
			if root.JCID() == JCIDSectionNode {
				rc.PageTitle = "Section root"
			}

			conflictSpaces := root.ObjectSpaceIDs(PropChildGraphSpaceElementNodes)
			if len(conflictSpaces) == 0 {
				continue
			}
			metadataObjects := make(map[ExGUID]*Node)
			for _, metaObj := range root.Children(PropMetaDataObjectsAboveGraphSpace) {
				metadataObjects[metaObj.OID().XOR(metadataSeedGUID)] = metaObj
			}
			for _, conflictSpace := range conflictSpaces {
				rc.Conflicts[conflictSpace] = metadataObjects[conflictSpace]
			}
		}
	}

	return rc, nil
}

// GetRootObject returns the node built for role, or nil.
func (rc *RevisionContext) GetRootObject(role uint32) *Node {
	return rc.RevisionRoles[role]
}

// GetObjectReference resolves oid to a built Node, memoizing the
// result and detecting cycles via a two-state (building, built)
// registry (spec §4.8). The building flag stays set for the entire
// eager walk of oid's reachable object references (Node.resolveReferences),
// not just the trivial struct literal that constructs the Node itself,
// so a real cycle anywhere in oid's subtree is caught here rather than
// surfacing as unbounded recursion later in MakeJsonTree.
func (rc *RevisionContext) GetObjectReference(oid ExGUID) (*Node, error) {
	if oid.IsNull() {
		return nil, nil
	}
	if node, ok := rc.objects[oid]; ok {
		return node, nil
	}
	if rc.building[oid] {
		return nil, ErrCircularObjectReference
	}
	rc.building[oid] = true
	defer delete(rc.building, oid)

	ps, ok := rc.Revision.GetObjectByOID(oid)
	if !ok {
		return nil, ErrObjectNotFound
	}
	node := newNode(rc, ps, oid)
	if err := node.resolveReferences(); err != nil {
		return nil, err
	}
	rc.objects[oid] = node
	return node, nil
}

// GetDataFile returns (creating on first use) the data-store blob
// named guid+extension.
func (rc *RevisionContext) GetDataFile(guid GUID, extension string) (*DataFile, error) {
	filename := guid.String() + extension
	if f, ok := rc.DataFiles[filename]; ok {
		return f, nil
	}
	data, ok := rc.store.FileData(guid)
	if !ok {
		return nil, ErrObjectNotFound
	}
	f := &DataFile{Filename: filename, Data: data, PagePersistentGUID: filename}
	rc.DataFiles[filename] = f
	return f, nil
}

// ObjectSpaceContext is one object space's contribution to the history
// builder: every decoded revision wrapped as a RevisionContext, the
// root (current) revision, and the sorted per-space version list
// (spec §4.10; grounded on object_tree_builder.py's
// ObjectSpaceBuilderCtx).
type ObjectSpaceContext struct {
	GOSID             ExGUID
	OSIndex           int
	Space             *ObjectSpace
	Revisions         map[ExGUID]*RevisionContext
	RootRevision      *RevisionContext
	Versions          []*RevisionContext
	VersionTimestamps []int64
	IsConflictSpace   bool
}

func newObjectSpaceContext(store *OneStoreFile, space *ObjectSpace, osIndex int) (*ObjectSpaceContext, error) {
	osc := &ObjectSpaceContext{
		GOSID:     space.Gosid,
		OSIndex:   osIndex,
		Space:     space,
		Revisions: make(map[ExGUID]*RevisionContext),
	}

	pending := make(map[ExGUID]*RevisionContext, len(space.Order))
	for _, rid := range space.Order {
		rev := space.Revisions[rid]
		rc, err := newRevisionContext(store, space.Gosid, osIndex, rev)
		if err != nil {
			return nil, err
		}
		pending[rid] = rc
	}

	var versions []*RevisionContext

	rootRid := space.DefaultContextRid
	osc.RootRevision = pending[rootRid]
	delete(pending, rootRid)

	historyRid, hasHistory := space.ContextRevisionID(VersionHistoryContextGUID)
	historyCtx, historyPresent := pending[historyRid]
	if hasHistory && historyPresent && !historyCtx.IsEncrypted {
		osc.Revisions[historyRid] = historyCtx
		delete(pending, historyRid)

		if root := historyCtx.GetRootObject(RootRoleContents); root != nil {
			for _, versionProxy := range root.Children(PropElementChildNodes) {
				ctxID, ok := versionProxy.ContextID(PropVersionHistoryGraphSpaceContext)
				if !ok {
					continue
				}
				rid, ok := space.ContextRevisionID(ctxID)
				if !ok {
					continue
				}
				if rc, ok := pending[rid]; ok {
					versions = append(versions, rc)
					delete(pending, rid)
				}
			}
		}
	}

	if osc.RootRevision != nil {
		versions = append(versions, osc.RootRevision)
	}

	for _, rc := range pending {
		osc.Revisions[rc.RID] = rc
	}

	sort.SliceStable(versions, func(i, j int) bool {
		return timestampOrZero(versions[i]) < timestampOrZero(versions[j])
	})

	for _, rc := range versions {
		osc.Revisions[rc.RID] = rc
		if rc.IsEncrypted {
			continue
		}
		osc.Versions = append(osc.Versions, rc)
		osc.VersionTimestamps = append(osc.VersionTimestamps, timestampOrZero(rc))
		if rc.ConflictAuthor != "" {
			osc.IsConflictSpace = true
		}
	}

	return osc, nil
}

func timestampOrZero(rc *RevisionContext) int64 {
	if rc == nil || rc.LastModifiedTimestamp == nil {
		return 0
	}
	return int64(*rc.LastModifiedTimestamp)
}

func identityInt64(v int64) int64 { return v }

// VersionByTimestamp looks a version up among this space's sorted
// version list (spec §4.10 "Version lookup").
func (osc *ObjectSpaceContext) VersionByTimestamp(timestamp int64, lowerBound, upperBound bool) *RevisionContext {
	switch {
	case upperBound:
		_, idx, ok := UpperBound(osc.VersionTimestamps, timestamp, identityInt64)
		if !ok {
			return nil
		}
		return osc.Versions[idx]
	case lowerBound:
		_, idx, ok := LowerBound(osc.VersionTimestamps, timestamp, identityInt64)
		if !ok {
			return nil
		}
		return osc.Versions[idx]
	default:
		_, idx, ok := Find(osc.VersionTimestamps, timestamp, identityInt64)
		if !ok {
			return nil
		}
		return osc.Versions[idx]
	}
}

// ObjectTreeBuilder owns every object space's built context, and
// produces the cross-space, timestamp-ordered revision history (spec
// §4.8 + §4.10; grounded on object_tree_builder.py's
// ObjectTreeBuilder).
type ObjectTreeBuilder struct {
	store                     *OneStoreFile
	RootGosid                 ExGUID
	ObjectSpaces              map[ExGUID]*ObjectSpaceContext
	order                     []ExGUID
	combineRevisionsTimeSpan  int64 // 100ns ticks
	versions                  []*HistoryVersion
}

// NewObjectTreeBuilder decodes every object space in store and wraps
// them for tree/history construction. combineRevisionsMinutes is the
// coalescing time span in minutes (0 disables coalescing).
func NewObjectTreeBuilder(store *OneStoreFile, combineRevisionsMinutes int) (*ObjectTreeBuilder, error) {
	spaces, rootGosid, gosids, err := store.OrderedObjectSpaces()
	if err != nil {
		return nil, err
	}

	b := &ObjectTreeBuilder{
		store:                    store,
		RootGosid:                rootGosid,
		ObjectSpaces:             make(map[ExGUID]*ObjectSpaceContext, len(spaces)),
		combineRevisionsTimeSpan: int64(combineRevisionsMinutes) * 60 * 1000 * 10000,
	}

	// os_index follows the root file-node list's true declaration
	// order, matching object_tree_builder.py's GetObjectSpaces()
	// enumeration (not an alphabetical resort of the gosids).
	for i, gosid := range gosids {
		osc, err := newObjectSpaceContext(store, spaces[gosid], i)
		if err != nil {
			return nil, err
		}
		b.ObjectSpaces[gosid] = osc
		b.order = append(b.order, gosid)
	}

	return b, nil
}
