// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/go-kratos/kratos/v2/log"
)

// logger is a package-level leveled logger, filtered to errors by
// default, exactly like the teacher's pe.logger in helper.go.
var logger = log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stdout), log.FilterLevel(log.LevelError)))

// FileKind distinguishes a section (.one) file from a table-of-contents
// (.onetoc2) file; it governs which revision-manifest-list vocabulary
// applies (spec §6).
type FileKind int

const (
	FileKindSection FileKind = iota
	FileKindTOC2
)

func (k FileKind) String() string {
	if k == FileKindTOC2 {
		return "toc2"
	}
	return "section"
}

// Well-known header GUIDs (MS-ONESTORE 2.3.1 Header).
var (
	sectionFileTypeGUID = GUID{0xE4, 0x52, 0x5C, 0x7B, 0x8C, 0xD8, 0xA7, 0x4D,
		0xAE, 0xB1, 0x53, 0x78, 0xD0, 0x29, 0x96, 0xD3}
	toc2FileTypeGUID = GUID{0xA1, 0x2F, 0xFF, 0x43, 0xD9, 0xEF, 0x76, 0x4C,
		0x9E, 0xE2, 0x10, 0xEA, 0x57, 0x22, 0x76, 0x5F}
	fileFormatGUID = GUID{0x3F, 0xDD, 0x9A, 0x10, 0x1B, 0x91, 0xF5, 0x49,
		0xA5, 0xD0, 0x17, 0x91, 0xED, 0xC8, 0xAE, 0xD8}
)

// headerFileNodeListRootOffset is the byte offset of
// Header.fcrFileNodeListRoot, a FileChunkRef64x32 (MS-ONESTORE 2.3.1).
const headerFileNodeListRootOffset = 164

// rootAllowedNodes is the vocabulary of the file's top-level file-node
// list (spec §6): the object-space manifest list and the file data
// store list.
var rootAllowedNodes = map[FileNodeID]bool{
	ObjectSpaceManifestListStartFND:     true,
	ObjectSpaceManifestListReferenceFND: true,
	ObjectSpaceManifestRootFND:          true,
	FileDataStoreListReferenceFND:       true,
}

// fileDataListAllowedNodes is the vocabulary of a file data store's own
// file-node stream.
var fileDataListAllowedNodes = map[FileNodeID]bool{
	FileDataStoreObjectReferenceFND: true,
}

// OneStoreFile is an open .one/.onetoc2 image (spec §4.9): the decoded
// header, the root file-node list, and the lazily-populated file data
// store, all views over one immutable backing buffer (spec §5).
type OneStoreFile struct {
	data []byte
	mm   mmap.MMap
	f    *os.File

	Kind    FileKind
	rootRef FileChunkRef

	fileData         map[GUID][]byte
	objectSpaces     map[ExGUID]*ObjectSpace
	objectSpaceOrder []ExGUID
	rootGosid        ExGUID
}

// Open memory-maps name and parses its header.
func Open(name string) (*OneStoreFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	store, err := newOneStoreFile([]byte(data))
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	store.mm = data
	store.f = f
	return store, nil
}

// OpenBytes parses an already-loaded file image, used by tests and the
// fuzz entry point.
func OpenBytes(data []byte) (*OneStoreFile, error) {
	return newOneStoreFile(data)
}

func newOneStoreFile(data []byte) (*OneStoreFile, error) {
	store := &OneStoreFile{data: data, fileData: make(map[GUID][]byte)}
	if err := store.parseHeader(); err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases the memory mapping and underlying file handle, if any.
func (s *OneStoreFile) Close() error {
	if s.mm != nil {
		_ = s.mm.Unmap()
	}
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}

func (s *OneStoreFile) parseHeader() error {
	r := NewReader(s.data)

	fileType, err := r.ReadGUID()
	if err != nil {
		return err
	}
	switch fileType {
	case sectionFileTypeGUID:
		s.Kind = FileKindSection
	case toc2FileTypeGUID:
		s.Kind = FileKindTOC2
	default:
		return ErrInvalidFile
	}

	if err := r.Skip(16); err != nil { // guidFile
		return err
	}
	if err := r.Skip(16); err != nil { // guidLegacyFileVersion
		return err
	}
	format, err := r.ReadGUID()
	if err != nil {
		return err
	}
	if format != fileFormatGUID {
		return ErrInvalidFile
	}

	field, err := r.Clone(nil, headerFileNodeListRootOffset-r.Offset(), 12)
	if err != nil {
		return err
	}
	ref, err := field.ReadFileChunkRef64x32()
	if err != nil {
		return err
	}
	if ref.IsNil() || ref.IsZero() {
		return ErrInvalidFile
	}
	s.rootRef = ref
	return nil
}

// RootFileNodeList opens the file's top-level file-node list.
func (s *OneStoreFile) RootFileNodeList() (*FileNodeList, error) {
	return NewFileNodeList(s, s.rootRef, rootAllowedNodes)
}

// ObjectSpaces decodes every object space declared in the root
// file-node list, along with the root gosid and the file data store
// (spec §4.9, §3 "OneStore file"). Results are cached on first call.
func (s *OneStoreFile) ObjectSpaces() (map[ExGUID]*ObjectSpace, ExGUID, error) {
	spaces, rootGosid, _, err := s.OrderedObjectSpaces()
	return spaces, rootGosid, err
}

// OrderedObjectSpaces is ObjectSpaces plus the gosids in true root
// file-node-list declaration order, the order object_tree_builder.py's
// GetObjectSpaces() enumeration assigns os_index from (spec §4.9).
// Results are cached on first call.
func (s *OneStoreFile) OrderedObjectSpaces() (map[ExGUID]*ObjectSpace, ExGUID, []ExGUID, error) {
	if s.objectSpaces != nil {
		return s.objectSpaces, s.rootGosid, s.objectSpaceOrder, nil
	}

	l, err := s.RootFileNodeList()
	if err != nil {
		return nil, ExGUID{}, nil, err
	}

	spaces := make(map[ExGUID]*ObjectSpace)
	var order []ExGUID
	var rootGosid ExGUID

	for {
		node, ok, err := l.Next()
		if err != nil {
			return nil, ExGUID{}, nil, err
		}
		if !ok {
			break
		}
		switch node.ID {
		case ObjectSpaceManifestRootFND:
			rootGosid = node.GosidRoot

		case ObjectSpaceManifestListReferenceFND:
			space, err := decodeObjectSpace(s, node.Ref)
			if err != nil {
				return nil, ExGUID{}, nil, err
			}
			spaces[node.GosidRoot] = space
			order = append(order, node.GosidRoot)

		case FileDataStoreListReferenceFND:
			if err := s.decodeFileDataStoreList(node.Ref); err != nil {
				logger.Warnf("file data store list: %v", err)
			}
		}
	}

	s.objectSpaces = spaces
	s.rootGosid = rootGosid
	s.objectSpaceOrder = order
	return spaces, rootGosid, order, nil
}

// decodeFileDataStoreList walks a file data store's file-node stream,
// populating s.fileData from each FileDataStoreObjectReferenceFND's
// (guid, blob) pair.
func (s *OneStoreFile) decodeFileDataStoreList(ref FileChunkRef) error {
	l, err := NewFileNodeList(s, ref, fileDataListAllowedNodes)
	if err != nil {
		return err
	}
	for {
		node, ok, err := l.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if node.ID != FileDataStoreObjectReferenceFND {
			return ErrUnexpectedFileNode
		}
		data, err := s.readChunk(node.Ref)
		if err != nil {
			return err
		}
		s.setFileData(node.FileDataGUID, data)
	}
}

// sliceAt returns a reader over the window described by ref, relative
// to the whole file image.
func (s *OneStoreFile) sliceAt(ref FileChunkRef) (*Reader, error) {
	top := NewReader(s.data)
	return top.Clone(&ref, 0, -1)
}

// readChunk reads the entire window described by ref into a fresh,
// owned byte slice.
func (s *OneStoreFile) readChunk(ref FileChunkRef) ([]byte, error) {
	r, err := s.sliceAt(ref)
	if err != nil {
		return nil, err
	}
	return r.Bytes(r.Length())
}

func (s *OneStoreFile) setFileData(id GUID, data []byte) {
	owned := make([]byte, len(data))
	copy(owned, data)
	s.fileData[id] = owned
}

// FileData returns the raw blob stored under a file-data GUID declared
// by an object group (spec §4.4).
func (s *OneStoreFile) FileData(id GUID) ([]byte, bool) {
	data, ok := s.fileData[id]
	return data, ok
}
