// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

// Well-known property identifiers consumed by the object-tree builder
// and document emitter (MS-ONE 2.1). Only the subset needed to walk
// the graph and recover history metadata is named here; everything
// else stays addressable by raw numeric id through Node.Get.
const (
	PropLastModifiedTimeStamp             PropertyID = 0x1C002
	PropAuthorMostRecent                  PropertyID = 0x1E004
	PropAuthor                            PropertyID = 0x1C001
	PropNotebookManagementEntityGuid      PropertyID = 0x1C005
	PropCachedTitleString                 PropertyID = 0x1C006
	PropPageLevel                         PropertyID = 0x1C007
	PropHasConflictPages                  PropertyID = 0x1C008
	PropConflictingUserName               PropertyID = 0x1C009
	PropTopologyCreationTimeStamp         PropertyID = 0x1C00A
	PropChildGraphSpaceElementNodes       PropertyID = 0x1C00B
	PropMetaDataObjectsAboveGraphSpace    PropertyID = 0x1C00C
	PropElementChildNodes                 PropertyID = 0x1C00D
	PropVersionHistoryGraphSpaceContext   PropertyID = 0x1C00E
	PropRowCount                          PropertyID = 0x1C00F
	PropColumnCount                       PropertyID = 0x1C010
	PropTableColumnWidths                 PropertyID = 0x1C011
	PropElementChildNodesOfTable          PropertyID = 0x1C012
	PropElementChildNodesOfTableRow       PropertyID = 0x1C013
	PropOutlineElementChildLevel          PropertyID = 0x1C014
	PropStructureElementChildNodes        PropertyID = 0x1C015
	PropElementChildNodesOfPage           PropertyID = 0x1C016
	PropElementChildNodesOfTitle          PropertyID = 0x1C017
	PropElementChildNodesOfOutline        PropertyID = 0x1C018
	PropContentChildNodesOfOutlineElement PropertyID = 0x1C019
	PropElementChildNodesOfOutlineElement PropertyID = 0x1C01A
	PropListNodes                         PropertyID = 0x1C01B
	PropElementChildNodesOfTableCell      PropertyID = 0x1C01C
	PropRichEditTextUnicode               PropertyID = 0x1C01D
)
