// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

// globalIDTableEntryKind distinguishes the three node variants that can
// populate a global ID table (spec §4.3).
type globalIDTableEntryKind int

const (
	globalIDEntryDirect globalIDTableEntryKind = iota
	globalIDEntryCopy
	globalIDEntryReplace
)

type globalIDTableEntry struct {
	Kind      globalIDTableEntryKind
	Index     uint32 // direct/replace: destination index
	GUID      GUID   // direct/replace: value
	BaseIndex uint32 // copy: first source index in the previous table
	Count     uint32 // copy: number of consecutive entries to import
}

func decodeGlobalIDEntryDirect(r *Reader) (globalIDTableEntry, error) {
	index, err := r.U32()
	if err != nil {
		return globalIDTableEntry{}, err
	}
	guid, err := r.ReadGUID()
	if err != nil {
		return globalIDTableEntry{}, err
	}
	return globalIDTableEntry{Kind: globalIDEntryDirect, Index: index, GUID: guid}, nil
}

func decodeGlobalIDEntryCopy(r *Reader) (globalIDTableEntry, error) {
	base, err := r.U32()
	if err != nil {
		return globalIDTableEntry{}, err
	}
	count, err := r.U32()
	if err != nil {
		return globalIDTableEntry{}, err
	}
	return globalIDTableEntry{Kind: globalIDEntryCopy, BaseIndex: base, Count: count}, nil
}

func decodeGlobalIDEntryReplace(r *Reader) (globalIDTableEntry, error) {
	index, err := r.U32()
	if err != nil {
		return globalIDTableEntry{}, err
	}
	guid, err := r.ReadGUID()
	if err != nil {
		return globalIDTableEntry{}, err
	}
	return globalIDTableEntry{Kind: globalIDEntryReplace, Index: index, GUID: guid}, nil
}

// GlobalIDTable maps CompactID.Index to a GUID for one revision,
// possibly seeded from a dependent revision's table (spec §4.3). A
// CompactID resolves to an ExGUID by pairing its own N with the GUID
// found at its Index.
type GlobalIDTable struct {
	entries map[uint32]GUID
}

// newGlobalIDTable seeds a fresh table from a previous (dependent
// revision's) table, copy-on-write: the map is only ever written to
// after being copied, so the previous table is never mutated.
func newGlobalIDTable(prev *GlobalIDTable) *GlobalIDTable {
	t := &GlobalIDTable{entries: make(map[uint32]GUID)}
	if prev != nil {
		for k, v := range prev.entries {
			t.entries[k] = v
		}
	}
	return t
}

func (t *GlobalIDTable) apply(entry globalIDTableEntry, prev *GlobalIDTable) error {
	switch entry.Kind {
	case globalIDEntryDirect, globalIDEntryReplace:
		t.entries[entry.Index] = entry.GUID
	case globalIDEntryCopy:
		if prev == nil {
			return ErrObjectNotFound
		}
		for i := uint32(0); i < entry.Count; i++ {
			idx := entry.BaseIndex + i
			guid, ok := prev.entries[idx]
			if !ok {
				return ErrObjectNotFound
			}
			t.entries[idx] = guid
		}
	}
	return nil
}

// Resolve maps a CompactID to an ExGUID through this table. Missing
// keys are a decode error (spec §4.3).
func (t *GlobalIDTable) Resolve(id CompactID) (ExGUID, error) {
	guid, ok := t.entries[id.Index]
	if !ok {
		return ExGUID{}, ErrObjectNotFound
	}
	return ExGUID{GUID: guid, N: uint32(id.N)}, nil
}

// decodeGlobalIDTable consumes file-nodes from l starting just after a
// GlobalIdTableStart{FNDX,2FND} node, until and including
// GlobalIdTableEndFNDX, building a table seeded from prev.
//
// It returns the table and the first node following the terminator,
// ready for the caller to resume its own state machine (spec §4.6 step
// 4 hands control back to RevisionManifest assembly this way).
func decodeGlobalIDTable(l *FileNodeList, prev *GlobalIDTable) (*GlobalIDTable, FileNode, error) {
	table := newGlobalIDTable(prev)

	for {
		node, ok, err := l.Next()
		if err != nil {
			return nil, FileNode{}, err
		}
		if !ok {
			return nil, FileNode{}, ErrUnexpectedFileNode
		}
		switch node.ID {
		case GlobalIdTableEntryFNDX, GlobalIdTableEntry2FNDX, GlobalIdTableEntry3FNDX:
			if err := table.apply(node.GlobalIDEntry, prev); err != nil {
				return nil, FileNode{}, err
			}
		case GlobalIdTableEndFNDX:
			next, ok, err := l.Next()
			if err != nil {
				return nil, FileNode{}, err
			}
			if !ok {
				return nil, FileNode{}, ErrUnexpectedFileNode
			}
			return table, next, nil
		default:
			return nil, FileNode{}, ErrUnexpectedFileNode
		}
	}
}
