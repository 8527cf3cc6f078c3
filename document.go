// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "fmt"

// MakeJsonTree renders a node and its reachable object graph as a
// generic JSON-able tree: every scalar property by name (falling back
// to its raw numeric id), every object reference recursively expanded
// in place (spec §4.9; grounded on json_tree_builder.py's
// MakeJsonNode/JsonRevisionTreeBuilderCtx.MakeJsonTree, generalized
// from the Python's per-class named-attribute schema to Node's
// property-table walk since Go has no equivalent of dynamic
// per-JCID classes).
func (n *Node) MakeJsonTree() map[string]any {
	obj := map[string]any{"type": n.Kind()}

	for _, id := range n.ps.Order {
		prop, ok := n.ps.Get(id)
		if !ok {
			continue
		}
		key := propertyName(id)
		switch prop.Type {
		case PropertyTypeBool:
			obj[key] = prop.Bool
		case PropertyTypeOneByte:
			obj[key] = prop.U8
		case PropertyTypeTwoBytes:
			obj[key] = prop.U16
		case PropertyTypeFourBytes:
			obj[key] = prop.U32
		case PropertyTypeEightBytes:
			obj[key] = prop.U64
		case PropertyTypeFourBytesLengthPrefixedData:
			if s, err := prop.AsUTF16String(); err == nil {
				obj[key] = s
			} else {
				obj[key] = prop.Data
			}
		case PropertyTypeObjectID:
			if child, ok := n.Child(id); ok {
				obj[key] = child.MakeJsonTree()
			}
		case PropertyTypeArrayOfObjectIDs:
			children := n.Children(id)
			arr := make([]map[string]any, 0, len(children))
			for _, c := range children {
				arr = append(arr, c.MakeJsonTree())
			}
			obj[key] = arr
		case PropertyTypeContextID, PropertyTypeObjectSpaceID:
			if eg, ok := n.ContextID(id); ok {
				obj[key] = eg.String()
			}
		case PropertyTypeArrayOfContextIDs, PropertyTypeArrayOfObjectSpaceIDs:
			ids := n.ObjectSpaceIDs(id)
			arr := make([]string, 0, len(ids))
			for _, eg := range ids {
				arr = append(arr, eg.String())
			}
			obj[key] = arr
		case PropertyTypePropertySet:
			obj[key] = newNode(n.ctx, prop.PropertySet, NullExGUID).MakeJsonTree()
		case PropertyTypeArrayOfPropertyValues:
			arr := make([]map[string]any, 0, len(prop.PropertySets))
			for _, inner := range prop.PropertySets {
				arr = append(arr, newNode(n.ctx, inner, NullExGUID).MakeJsonTree())
			}
			obj[key] = arr
		}
	}

	return obj
}

func propertyName(id PropertyID) string {
	if name, ok := propertyNames[id]; ok {
		return name
	}
	return fmt.Sprintf("prop_%05X", uint32(id))
}

// MakeJsonTree renders every root-role object of this revision into
// one merged tree, tagging encrypted revisions so a consumer can tell
// content is unavailable (spec §4.8, §4.10; grounded on
// json_tree_builder.py's JsonRevisionTreeBuilderCtx.MakeJsonTree).
func (rc *RevisionContext) MakeJsonTree() map[string]any {
	obj := map[string]any{}
	for role, root := range rc.RevisionRoles {
		if root == nil {
			continue
		}
		for k, v := range root.MakeJsonTree() {
			obj[fmt.Sprintf("role%d_%s", role, k)] = v
		}
	}
	if rc.IsEncrypted {
		obj["IsEncrypted"] = true
	}
	obj["PagePersistentGUID"] = rc.PagePersistentGUID
	obj["PageTitle"] = rc.PageTitle
	return obj
}

// MakeRootJsonTree renders only the current (root) revision of an
// object space.
func (osc *ObjectSpaceContext) MakeRootJsonTree() map[string]any {
	if osc.RootRevision == nil {
		return nil
	}
	return osc.RootRevision.MakeJsonTree()
}

// MakeAllRevisionsJsonTree renders every revision in osc.Revisions,
// keyed by rid, marking the root revision with root_revision (spec
// §4.10; grounded on json_tree_builder.py's
// JsonObjectSpaceBuilderCtx.MakeAllRevisionsJsonTree).
func (osc *ObjectSpaceContext) MakeAllRevisionsJsonTree() map[string]any {
	revisions := map[string]any{}
	for rid, rc := range osc.Revisions {
		tree := rc.MakeJsonTree()
		if osc.RootRevision != nil && rid == osc.RootRevision.RID {
			tree["root_revision"] = true
		}
		revisions[rid.String()] = tree
	}
	return map[string]any{
		"type":      "page",
		"revisions": revisions,
	}
}

// BuildJsonTree renders the document's current state: one entry per
// non-root object space, keyed by gosid (spec §6 default CLI mode;
// grounded on json_tree_builder.py's
// JsonTreeBuilder.BuildJsonTree).
func (b *ObjectTreeBuilder) BuildJsonTree(rootTreeName string) map[string]any {
	pages := map[string]any{}
	for gosid, osc := range b.ObjectSpaces {
		if gosid == b.RootGosid {
			continue
		}
		pages[gosid.String()] = osc.MakeRootJsonTree()
	}
	return map[string]any{"type": rootTreeName, "pages": pages}
}

// BuildAllRevisionsJsonTree renders every object space's complete
// revision set (spec §6 "-A" / all-revisions CLI mode).
func (b *ObjectTreeBuilder) BuildAllRevisionsJsonTree(rootTreeName string) map[string]any {
	pages := map[string]any{}
	var pageIndex map[string]any
	if root, ok := b.ObjectSpaces[b.RootGosid]; ok {
		pageIndex = root.MakeAllRevisionsJsonTree()
	}
	for gosid, osc := range b.ObjectSpaces {
		if gosid == b.RootGosid {
			continue
		}
		pages[gosid.String()] = osc.MakeAllRevisionsJsonTree()
	}
	return map[string]any{"type": rootTreeName, "pageIndex": pageIndex, "pages": pages}
}

// BuildRevisionJsonTree renders the document as it stood at the
// version whose timestamp is the tightest upper bound of timestamp
// (spec §6 "-timestamp" CLI mode; grounded on
// json_tree_builder.py's JsonTreeBuilder.BuildRevisionJsonTree).
func (b *ObjectTreeBuilder) BuildRevisionJsonTree(rootTreeName string, timestamp int64) (map[string]any, error) {
	versions, err := b.GetVersions()
	if err != nil {
		return nil, err
	}
	_, idx, ok := UpperBound(versions, timestamp, func(v *HistoryVersion) int64 { return v.Timestamp })
	if !ok {
		return nil, nil
	}
	version := versions[idx]

	pages := map[string]any{}
	for _, page := range version.Pages {
		if page.Revision == nil {
			continue
		}
		pages[page.PagePersistentGUID] = page.Revision.MakeJsonTree()
	}
	return map[string]any{"type": rootTreeName, "pages": pages}, nil
}

// Validate recursively checks that obj only contains JSON-representable
// values (string, bool, numeric, map[string]any, []map[string]any,
// []string, or nil), matching json_tree_builder.py's Validate.
func Validate(obj any) bool {
	switch v := obj.(type) {
	case nil, string, bool:
		return true
	case uint8, uint16, uint32, uint64, int, int64, float32, float64:
		return true
	case map[string]any:
		for _, sub := range v {
			if !Validate(sub) {
				return false
			}
		}
		return true
	case []map[string]any:
		for _, sub := range v {
			if !Validate(sub) {
				return false
			}
		}
		return true
	case []string:
		return true
	default:
		return false
	}
}

var propertyNames = map[PropertyID]string{
	PropLastModifiedTimeStamp:             "LastModifiedTimeStamp",
	PropAuthorMostRecent:                  "AuthorMostRecent",
	PropAuthor:                            "Author",
	PropNotebookManagementEntityGuid:      "NotebookManagementEntityGuid",
	PropCachedTitleString:                 "CachedTitleString",
	PropPageLevel:                         "PageLevel",
	PropHasConflictPages:                  "HasConflictPages",
	PropConflictingUserName:               "ConflictingUserName",
	PropTopologyCreationTimeStamp:         "TopologyCreationTimeStamp",
	PropChildGraphSpaceElementNodes:       "ChildGraphSpaceElementNodes",
	PropMetaDataObjectsAboveGraphSpace:    "MetaDataObjectsAboveGraphSpace",
	PropElementChildNodes:                 "ElementChildNodes",
	PropVersionHistoryGraphSpaceContext:   "VersionHistoryGraphSpaceContext",
	PropRowCount:                          "RowCount",
	PropColumnCount:                       "ColumnCount",
	PropTableColumnWidths:                 "TableColumnWidths",
	PropElementChildNodesOfTable:          "ElementChildNodesOfTable",
	PropElementChildNodesOfTableRow:       "ElementChildNodesOfTableRow",
	PropOutlineElementChildLevel:          "OutlineElementChildLevel",
	PropStructureElementChildNodes:        "StructureElementChildNodes",
	PropElementChildNodesOfPage:           "ElementChildNodesOfPage",
	PropElementChildNodesOfTitle:          "ElementChildNodesOfTitle",
	PropElementChildNodesOfOutline:        "ElementChildNodesOfOutline",
	PropContentChildNodesOfOutlineElement: "ContentChildNodesOfOutlineElement",
	PropElementChildNodesOfOutlineElement: "ElementChildNodesOfOutlineElement",
	PropListNodes:                         "ListNodes",
	PropElementChildNodesOfTableCell:      "ElementChildNodesOfTableCell",
	PropRichEditTextUnicode:               "RichEditTextUnicode",
}
