// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "fmt"

// Well-known JCID values (MS-ONESTORE/MS-ONE property-set classifiers).
// A section file and a table-of-contents file draw from disjoint
// registries (spec §4.9); both are listed here since neither vocabulary
// overlaps in practice.
const (
	JCIDSectionNode                                    JCID = 0x0001
	JCIDPageSeriesNode                                  JCID = 0x0002
	JCIDPageNode                                        JCID = 0x0004
	JCIDOutlineNode                                      JCID = 0x000C
	JCIDOutlineElementNode                               JCID = 0x000D
	JCIDRichTextOENode                                   JCID = 0x000E
	JCIDImageNode                                        JCID = 0x0011
	JCIDNumberListNode                                   JCID = 0x0012
	JCIDOutlineGroup                                     JCID = 0x0015
	JCIDTableNode                                        JCID = 0x0018
	JCIDTableRowNode                                     JCID = 0x0019
	JCIDTableCellNode                                    JCID = 0x001A
	JCIDTitleNode                                        JCID = 0x001C
	JCIDPageMetaData                                     JCID = 0x0024
	JCIDSectionMetaData                                  JCID = 0x0025
	JCIDEmbeddedFileNode                                 JCID = 0x0030
	JCIDEmbeddedFileContainer                            JCID = 0x0031
	JCIDPictureContainer14                               JCID = 0x0032
	JCIDPageManifestNode                                 JCID = 0x0037
	JCIDConflictPageMetaData                             JCID = 0x0039
	JCIDVersionHistoryContent                            JCID = 0x0042
	JCIDVersionProxy                                     JCID = 0x0043
	JCIDNoteTagSharedDefinitionContainer                 JCID = 0x0048
	JCIDParagraphStyleObject                             JCID = 0x004D
	JCIDRevisionMetaData                                 JCID = 0x0054
	JCIDReadOnlyPersistablePropertyContainerForAuthor    JCID = 0x0077
	JCIDPersistablePropertyContainerForTOC               JCID = 0x0078
	JCIDPersistablePropertyContainerForTOCSection        JCID = 0x0079
)

var jcidNames = map[JCID]string{
	JCIDSectionNode:                                 "SectionNode",
	JCIDPageSeriesNode:                              "PageSeriesNode",
	JCIDPageNode:                                    "PageNode",
	JCIDOutlineNode:                                 "OutlineNode",
	JCIDOutlineElementNode:                          "OutlineElementNode",
	JCIDRichTextOENode:                              "RichTextOENode",
	JCIDImageNode:                                   "ImageNode",
	JCIDNumberListNode:                              "NumberListNode",
	JCIDOutlineGroup:                                "OutlineGroup",
	JCIDTableNode:                                   "TableNode",
	JCIDTableRowNode:                                "TableRowNode",
	JCIDTableCellNode:                               "TableCellNode",
	JCIDTitleNode:                                   "TitleNode",
	JCIDPageMetaData:                                "PageMetaData",
	JCIDSectionMetaData:                             "SectionMetaData",
	JCIDEmbeddedFileNode:                            "EmbeddedFileNode",
	JCIDEmbeddedFileContainer:                       "EmbeddedFileContainer",
	JCIDPictureContainer14:                          "PictureContainer14",
	JCIDPageManifestNode:                            "PageManifestNode",
	JCIDConflictPageMetaData:                        "ConflictPageMetaData",
	JCIDVersionHistoryContent:                       "VersionHistoryContent",
	JCIDVersionProxy:                                "VersionProxy",
	JCIDNoteTagSharedDefinitionContainer:            "NoteTagSharedDefinitionContainer",
	JCIDParagraphStyleObject:                        "ParagraphStyleObject",
	JCIDRevisionMetaData:                            "RevisionMetaData",
	JCIDReadOnlyPersistablePropertyContainerForAuthor: "ReadOnlyPersistablePropertyContainerForAuthor",
	JCIDPersistablePropertyContainerForTOC:          "PersistablePropertyContainerForTOC",
	JCIDPersistablePropertyContainerForTOCSection:   "PersistablePropertyContainerForTOCSection",
}

// String names a JCID, falling back to a base node label for anything
// not in the registry (spec §4.9, "unknown JCID falls back to a base
// node").
func (j JCID) String() string {
	if name, ok := jcidNames[j]; ok {
		return name
	}
	return fmt.Sprintf("UnknownNode(0x%04X)", uint32(j))
}
