// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "testing"

func TestJCIDStringKnown(t *testing.T) {
	if got, want := JCIDPageNode.String(), "PageNode"; got != want {
		t.Errorf("JCIDPageNode.String() = %q, want %q", got, want)
	}
}

func TestJCIDStringUnknownFallsBackToBaseNode(t *testing.T) {
	unknown := JCID(0x1234)
	if got, want := unknown.String(), "UnknownNode(0x1234)"; got != want {
		t.Errorf("unknown JCID.String() = %q, want %q", got, want)
	}
}
