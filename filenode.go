// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "fmt"

// FileNodeID identifies the kind of a decoded file-node (spec §4.2,
// MS-ONESTORE 2.4.3). The numeric values below follow the public
// MS-ONESTORE "File Node Types" table.
type FileNodeID uint16

const (
	ObjectSpaceManifestRootFND             FileNodeID = 0x004
	ObjectSpaceManifestListReferenceFND    FileNodeID = 0x008
	ObjectSpaceManifestListStartFND        FileNodeID = 0x00C
	RevisionManifestListReferenceFND       FileNodeID = 0x010
	RevisionManifestListStartFND           FileNodeID = 0x014
	RevisionManifestStart4FND              FileNodeID = 0x01B
	RevisionManifestEndFND                 FileNodeID = 0x01C
	RevisionManifestStart6FND              FileNodeID = 0x01E
	RevisionManifestStart7FND              FileNodeID = 0x021
	GlobalIdTableStartFNDX                 FileNodeID = 0x022
	GlobalIdTableStart2FND                 FileNodeID = 0x024
	GlobalIdTableEntryFNDX                 FileNodeID = 0x025
	GlobalIdTableEntry2FNDX                FileNodeID = 0x026
	GlobalIdTableEntry3FNDX                FileNodeID = 0x027
	GlobalIdTableEndFNDX                   FileNodeID = 0x028
	ObjectDeclarationWithRefCountFNDX      FileNodeID = 0x02D
	ObjectDeclarationWithRefCount2FNDX     FileNodeID = 0x02E
	ObjectRevisionWithRefCountFNDX         FileNodeID = 0x041
	ObjectRevisionWithRefCount2FNDX        FileNodeID = 0x042
	RootObjectReference2FNDX               FileNodeID = 0x059
	RootObjectReference3FND                FileNodeID = 0x05C
	RevisionRoleDeclarationFND             FileNodeID = 0x05D
	RevisionRoleAndContextDeclarationFND   FileNodeID = 0x05E
	ObjectDeclarationFileData3RefCountFND  FileNodeID = 0x063
	ObjectDeclarationFileData3LargeRefCountFND FileNodeID = 0x064
	ObjectDataEncryptionKeyV2FNDX          FileNodeID = 0x072
	ObjectInfoDependencyOverridesFND       FileNodeID = 0x073
	DataSignatureGroupDefinitionFND        FileNodeID = 0x084
	FileDataStoreListReferenceFND          FileNodeID = 0x08C
	FileDataStoreObjectReferenceFND        FileNodeID = 0x090
	ObjectGroupListReferenceFND            FileNodeID = 0x0A4
	ObjectGroupStartFND                    FileNodeID = 0x0A5
	ObjectGroupEndFND                      FileNodeID = 0x0B0
	ObjectDeclarationFND                   FileNodeID = 0x0A0
	ChunkTerminatorFND                     FileNodeID = 0x0FF
)

func (id FileNodeID) String() string {
	if name, ok := fileNodeIDNames[id]; ok {
		return name
	}
	return fmt.Sprintf("FileNodeID(0x%03X)", uint16(id))
}

var fileNodeIDNames = map[FileNodeID]string{
	ObjectSpaceManifestRootFND:                 "ObjectSpaceManifestRootFND",
	ObjectSpaceManifestListReferenceFND:        "ObjectSpaceManifestListReferenceFND",
	ObjectSpaceManifestListStartFND:            "ObjectSpaceManifestListStartFND",
	RevisionManifestListReferenceFND:           "RevisionManifestListReferenceFND",
	RevisionManifestListStartFND:               "RevisionManifestListStartFND",
	RevisionManifestStart4FND:                  "RevisionManifestStart4FND",
	RevisionManifestEndFND:                     "RevisionManifestEndFND",
	RevisionManifestStart6FND:                  "RevisionManifestStart6FND",
	RevisionManifestStart7FND:                  "RevisionManifestStart7FND",
	GlobalIdTableStartFNDX:                     "GlobalIdTableStartFNDX",
	GlobalIdTableStart2FND:                     "GlobalIdTableStart2FND",
	GlobalIdTableEntryFNDX:                     "GlobalIdTableEntryFNDX",
	GlobalIdTableEntry2FNDX:                    "GlobalIdTableEntry2FNDX",
	GlobalIdTableEntry3FNDX:                    "GlobalIdTableEntry3FNDX",
	GlobalIdTableEndFNDX:                       "GlobalIdTableEndFNDX",
	ObjectDeclarationWithRefCountFNDX:          "ObjectDeclarationWithRefCountFNDX",
	ObjectDeclarationWithRefCount2FNDX:         "ObjectDeclarationWithRefCount2FNDX",
	ObjectRevisionWithRefCountFNDX:             "ObjectRevisionWithRefCountFNDX",
	ObjectRevisionWithRefCount2FNDX:            "ObjectRevisionWithRefCount2FNDX",
	RootObjectReference2FNDX:                   "RootObjectReference2FNDX",
	RootObjectReference3FND:                    "RootObjectReference3FND",
	RevisionRoleDeclarationFND:                 "RevisionRoleDeclarationFND",
	RevisionRoleAndContextDeclarationFND:       "RevisionRoleAndContextDeclarationFND",
	ObjectDeclarationFileData3RefCountFND:      "ObjectDeclarationFileData3RefCountFND",
	ObjectDeclarationFileData3LargeRefCountFND: "ObjectDeclarationFileData3LargeRefCountFND",
	ObjectDataEncryptionKeyV2FNDX:              "ObjectDataEncryptionKeyV2FNDX",
	ObjectInfoDependencyOverridesFND:           "ObjectInfoDependencyOverridesFND",
	DataSignatureGroupDefinitionFND:            "DataSignatureGroupDefinitionFND",
	FileDataStoreListReferenceFND:              "FileDataStoreListReferenceFND",
	FileDataStoreObjectReferenceFND:            "FileDataStoreObjectReferenceFND",
	ObjectGroupListReferenceFND:                "ObjectGroupListReferenceFND",
	ObjectGroupStartFND:                        "ObjectGroupStartFND",
	ObjectGroupEndFND:                          "ObjectGroupEndFND",
	ObjectDeclarationFND:                       "ObjectDeclarationFND",
	ChunkTerminatorFND:                         "ChunkTerminatorFND",
}

// NotebookRevisionManifestListNodes is the allowed file-node vocabulary
// for a section (.one) file's revision manifest list (spec §6).
var NotebookRevisionManifestListNodes = map[FileNodeID]bool{
	RevisionManifestListStartFND:         true,
	RevisionRoleDeclarationFND:           true,
	RevisionRoleAndContextDeclarationFND: true,
	RevisionManifestStart6FND:            true,
	RevisionManifestStart7FND:            true,
	ObjectGroupListReferenceFND:          true,
	ObjectInfoDependencyOverridesFND:     true,
	RootObjectReference2FNDX:             true,
	RootObjectReference3FND:              true,
	GlobalIdTableStartFNDX:               true,
	GlobalIdTableStart2FND:               true,
	GlobalIdTableEntryFNDX:               true,
	GlobalIdTableEndFNDX:                 true,
	DataSignatureGroupDefinitionFND:      true,
	ObjectDataEncryptionKeyV2FNDX:        true,
	RevisionManifestEndFND:               true,
}

// Toc2RevisionManifestListNodes is the allowed vocabulary for a
// table-of-contents (.onetoc2) file's revision manifest list (spec §6).
var Toc2RevisionManifestListNodes = map[FileNodeID]bool{
	RevisionManifestListStartFND:          true,
	RevisionRoleDeclarationFND:            true,
	RevisionManifestStart4FND:             true,
	ObjectInfoDependencyOverridesFND:      true,
	RootObjectReference2FNDX:              true,
	GlobalIdTableStartFNDX:                true,
	GlobalIdTableEntryFNDX:                true,
	GlobalIdTableEntry2FNDX:                true,
	GlobalIdTableEntry3FNDX:                true,
	GlobalIdTableEndFNDX:                  true,
	DataSignatureGroupDefinitionFND:       true,
	ObjectDeclarationWithRefCountFNDX:     true,
	ObjectDeclarationWithRefCount2FNDX:    true,
	ObjectRevisionWithRefCountFNDX:        true,
	ObjectRevisionWithRefCount2FNDX:       true,
	RevisionManifestEndFND:                true,
}

// fileNodeHeader is the decoded 4-byte FileNode header (MS-ONESTORE
// 2.4.3): a 10-bit id, a 13-bit total size, and a base-type bit
// selecting whether a packed FileNodeChunkReference follows.
type fileNodeHeader struct {
	ID       FileNodeID
	Size     uint32
	BaseType uint8 // 0: no chunk reference; 1: chunk reference follows, packed per stpFormat/cbFormat
	StpFormat uint8
	CbFormat  uint8
}

func decodeFileNodeHeader(v uint32) fileNodeHeader {
	return fileNodeHeader{
		ID:        FileNodeID(v & 0x3FF),
		Size:      (v >> 10) & 0x1FFF,
		StpFormat: uint8((v >> 23) & 0x3),
		CbFormat:  uint8((v >> 25) & 0x3),
		BaseType:  uint8((v >> 27) & 0x1),
	}
}

// readPackedChunkRef reads a FileNodeChunkReference packed according to
// stpFormat/cbFormat (MS-ONESTORE 2.4.2): format 0 selects an 8-byte
// field, format 1 a 4-byte field, format 2 a 2-byte field scaled by 8,
// format 3 an 8-byte field scaled by 8.
func readPackedChunkRef(r *Reader, stpFormat, cbFormat uint8) (FileChunkRef, error) {
	stp, err := readPackedField(r, stpFormat)
	if err != nil {
		return FileChunkRef{}, err
	}
	cb, err := readPackedField(r, cbFormat)
	if err != nil {
		return FileChunkRef{}, err
	}
	return FileChunkRef{Stp: stp, Cb: cb}, nil
}

func readPackedField(r *Reader, format uint8) (uint64, error) {
	switch format {
	case 0:
		v, err := r.U64()
		return v, err
	case 1:
		v, err := r.U32()
		return uint64(v), err
	case 2:
		v, err := r.U16()
		return uint64(v) * 8, err
	case 3:
		v, err := r.U64()
		return v * 8, err
	default:
		return 0, fmt.Errorf("onestore: unknown chunk reference format %d", format)
	}
}

// FileNode is one decoded node out of a file-node stream: a header plus
// whatever typed fields its ID implies. Payload fields not relevant to
// read-only graph reconstruction are not kept: reference counts are
// read and discarded, and an ObjectInfoDependencyOverridesFND node keeps
// only its chunk reference in Ref. The override blob itself is not
// read, and Overrides is left empty.
type FileNode struct {
	ID FileNodeID

	// Generic out-of-band payload reference, when BaseType==1.
	Ref FileChunkRef

	// Populated selectively depending on ID; zero-valued otherwise.
	GosidRoot        ExGUID
	Rid              ExGUID
	RidDependent     ExGUID
	OdcsDefault      uint8
	RootRole         uint32
	CoidRoot         CompactID
	OidRoot          ExGUID
	ObjectGroupID    ExGUID
	DataSignatureGroup ExGUID
	Overrides        []byte
	FileDataGUID     GUID

	// For global-id-table entries.
	GlobalIDEntry globalIDTableEntry
}
