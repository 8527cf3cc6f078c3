// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "testing"

func TestValidateAcceptsPlainTree(t *testing.T) {
	tree := map[string]any{
		"type": "page",
		"pages": map[string]any{
			"child": map[string]any{"type": "outline", "count": uint32(3)},
		},
		"names": []string{"a", "b"},
	}
	if !Validate(tree) {
		t.Errorf("Validate() rejected a well-formed tree")
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	if Validate(map[string]any{"bad": complex(1, 2)}) {
		t.Errorf("Validate() accepted a non-JSON-representable value")
	}
}

func TestMakeJsonTreeTagsType(t *testing.T) {
	ps := &PropertySet{JCID: JCIDPageNode}
	n := newNode(nil, ps, NullExGUID)
	tree := n.MakeJsonTree()
	if tree["type"] != "PageNode" {
		t.Errorf("MakeJsonTree()[\"type\"] = %v, want PageNode", tree["type"])
	}
}
