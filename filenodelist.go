// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "fmt"

// Fragment framing magic numbers (MS-ONESTORE 2.4.1 FileNodeListFragment).
const (
	fileNodeListHeaderMagic uint64 = 0xA4567AB1F66E4B4D
	fileNodeListFooterMagic uint64 = 0x8BC215C38233BA4B
)

// FileNodeList iterates the decoded file-nodes of a chunked file-node
// stream, transparently following continuation references between
// fragments (spec §4.2). allowed restricts which FileNodeIDs may
// legally appear; an id outside that set aborts the stream with
// ErrUnexpectedFileNode.
type FileNodeList struct {
	store   *OneStoreFile
	allowed map[FileNodeID]bool

	frag    *Reader
	pending []FileNode
	pos     int
	done    bool
	err     error
}

// NewFileNodeList opens the file-node stream addressed by ref.
func NewFileNodeList(store *OneStoreFile, ref FileChunkRef, allowed map[FileNodeID]bool) (*FileNodeList, error) {
	l := &FileNodeList{store: store, allowed: allowed}
	frag, err := store.sliceAt(ref)
	if err != nil {
		return nil, err
	}
	l.frag = frag
	return l, nil
}

// Next returns the next decoded file-node in stream order, or
// (FileNode{}, false, nil) at end of stream, or a non-nil error if
// decoding fails or an unexpected node id is encountered.
func (l *FileNodeList) Next() (FileNode, bool, error) {
	if l.err != nil {
		return FileNode{}, false, l.err
	}
	for l.pos >= len(l.pending) {
		if l.done {
			return FileNode{}, false, nil
		}
		if err := l.loadFragment(); err != nil {
			l.err = err
			return FileNode{}, false, err
		}
	}
	node := l.pending[l.pos]
	l.pos++
	if l.allowed != nil && !l.allowed[node.ID] {
		l.err = fmt.Errorf("%w: %s", ErrUnexpectedFileNode, node.ID)
		return FileNode{}, false, l.err
	}
	return node, true, nil
}

func (l *FileNodeList) loadFragment() error {
	magic, err := l.frag.U64()
	if err != nil {
		return fmt.Errorf("file node list header: %w", err)
	}
	if magic != fileNodeListHeaderMagic {
		return fmt.Errorf("%w: bad file node list fragment magic", ErrInvalidFile)
	}
	if err := l.frag.Skip(4); err != nil { // fragment sequence number, unused for read-only walk
		return err
	}

	var nodes []FileNode
	for {
		if l.frag.Remaining() < 4 {
			return fmt.Errorf("%w: fragment truncated before footer", ErrInvalidFile)
		}
		peek, err := l.frag.BytesAt(0, 4)
		if err != nil {
			return err
		}
		raw := uint32(peek[0]) | uint32(peek[1])<<8 | uint32(peek[2])<<16 | uint32(peek[3])<<24
		hdr := decodeFileNodeHeader(raw)
		if hdr.ID == ChunkTerminatorFND {
			if err := l.frag.Skip(4); err != nil {
				return err
			}
			break
		}
		if _, err := l.frag.U32(); err != nil {
			return err
		}
		node, err := decodeFileNodeBody(l.frag, hdr)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", hdr.ID, err)
		}
		nodes = append(nodes, node)
	}

	next, err := l.frag.ReadFileChunkRef64x32()
	if err != nil {
		return err
	}
	footer, err := l.frag.U64()
	if err != nil {
		return err
	}
	if footer != fileNodeListFooterMagic {
		return fmt.Errorf("%w: bad file node list fragment footer", ErrInvalidFile)
	}

	l.pending = nodes
	l.pos = 0
	if next.IsNil() || next.IsZero() {
		l.done = true
		return nil
	}
	nextFrag, err := l.store.sliceAt(next)
	if err != nil {
		return err
	}
	l.frag = nextFrag
	return nil
}

// decodeFileNodeBody decodes the ID-specific fields of a file-node
// following its 4-byte header, and the out-of-band chunk reference if
// BaseType indicates one follows.
func decodeFileNodeBody(r *Reader, hdr fileNodeHeader) (FileNode, error) {
	node := FileNode{ID: hdr.ID}

	readRef := func() error {
		ref, err := readPackedChunkRef(r, hdr.StpFormat, hdr.CbFormat)
		node.Ref = ref
		return err
	}

	switch hdr.ID {
	case ObjectSpaceManifestRootFND, ObjectSpaceManifestListStartFND:
		gosid, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		node.GosidRoot = gosid

	case ObjectSpaceManifestListReferenceFND:
		gosid, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		node.GosidRoot = gosid
		if err := readRef(); err != nil {
			return node, err
		}

	case FileDataStoreListReferenceFND:
		if err := readRef(); err != nil {
			return node, err
		}

	case FileDataStoreObjectReferenceFND:
		guid, err := r.ReadGUID()
		if err != nil {
			return node, err
		}
		node.FileDataGUID = guid
		if err := readRef(); err != nil {
			return node, err
		}

	case RevisionManifestListStartFND:
		gosid, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		node.GosidRoot = gosid

	case RevisionManifestStart4FND, RevisionManifestStart6FND, RevisionManifestStart7FND:
		rid, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		ridDep, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		odcs, err := r.U8()
		if err != nil {
			return node, err
		}
		node.Rid = rid
		node.RidDependent = ridDep
		node.OdcsDefault = odcs

	case RevisionRoleDeclarationFND:
		role, err := r.U32()
		if err != nil {
			return node, err
		}
		node.RootRole = role

	case RevisionRoleAndContextDeclarationFND:
		role, err := r.U32()
		if err != nil {
			return node, err
		}
		node.RootRole = role
		if _, err := r.ReadExGUID(); err != nil { // context id, not needed for graph walk
			return node, err
		}

	case ObjectGroupListReferenceFND:
		ogid, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		node.ObjectGroupID = ogid
		if err := readRef(); err != nil {
			return node, err
		}

	case ObjectInfoDependencyOverridesFND:
		if err := readRef(); err != nil {
			return node, err
		}

	case RootObjectReference2FNDX:
		coid, err := r.ReadCompactID()
		if err != nil {
			return node, err
		}
		role, err := r.U32()
		if err != nil {
			return node, err
		}
		node.CoidRoot = coid
		node.RootRole = role

	case RootObjectReference3FND:
		oid, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		role, err := r.U32()
		if err != nil {
			return node, err
		}
		node.OidRoot = oid
		node.RootRole = role

	case GlobalIdTableStartFNDX, GlobalIdTableStart2FND:
		// No inline payload; the entries that follow carry the data.

	case GlobalIdTableEntryFNDX:
		entry, err := decodeGlobalIDEntryDirect(r)
		if err != nil {
			return node, err
		}
		node.GlobalIDEntry = entry

	case GlobalIdTableEntry2FNDX:
		entry, err := decodeGlobalIDEntryCopy(r)
		if err != nil {
			return node, err
		}
		node.GlobalIDEntry = entry

	case GlobalIdTableEntry3FNDX:
		entry, err := decodeGlobalIDEntryReplace(r)
		if err != nil {
			return node, err
		}
		node.GlobalIDEntry = entry

	case GlobalIdTableEndFNDX:
		// No payload.

	case DataSignatureGroupDefinitionFND:
		sig, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		node.DataSignatureGroup = sig

	case ObjectDataEncryptionKeyV2FNDX:
		// Envelope only; payload bytes are not needed to detect
		// encryption (odcsDefault already signals it).
		if hdr.BaseType == 1 {
			if err := readRef(); err != nil {
				return node, err
			}
		}

	case ObjectDeclarationWithRefCountFNDX, ObjectDeclarationWithRefCount2FNDX,
		ObjectRevisionWithRefCountFNDX, ObjectRevisionWithRefCount2FNDX:
		// Reserved: declarations appear in the toc2 vocabulary but are
		// not consumed downstream (spec §9). Skip the envelope.
		if hdr.BaseType == 1 {
			if err := readRef(); err != nil {
				return node, err
			}
		}

	case ObjectDeclarationFileData3RefCountFND, ObjectDeclarationFileData3LargeRefCountFND:
		guid, err := r.ReadGUID()
		if err != nil {
			return node, err
		}
		node.FileDataGUID = guid
		refCountWidth := 4
		if hdr.ID == ObjectDeclarationFileData3LargeRefCountFND {
			refCountWidth = 8
		}
		if _, err := r.Bytes(refCountWidth); err != nil { // reference count, unused read-only
			return node, err
		}
		if err := readRef(); err != nil {
			return node, err
		}

	case ObjectGroupStartFND:
		ogid, err := r.ReadExGUID()
		if err != nil {
			return node, err
		}
		node.ObjectGroupID = ogid

	case ObjectGroupEndFND:
		// No payload.

	case ObjectDeclarationFND:
		oid, err := r.ReadCompactID()
		if err != nil {
			return node, err
		}
		jcid, err := r.U32()
		if err != nil {
			return node, err
		}
		node.CoidRoot = oid
		node.RootRole = jcid // repurposed field: JCID value for this declaration
		if err := readRef(); err != nil {
			return node, err
		}

	default:
		// Unknown but allowed by the caller's vocabulary: consume its
		// declared out-of-band reference if it carries one, so the
		// stream stays aligned.
		if hdr.BaseType == 1 {
			if err := readRef(); err != nil {
				return node, err
			}
		}
	}

	return node, nil
}
