// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Dump writes a human-readable decode dump of the file to w (spec §6
// "-L/--log"), grounded on the teacher's cmd/dump.go section-by-section
// tabwriter dump: one sectioned block per object space, each listing
// its revisions. verbosity 0 prints only object-space/revision
// identity; verbosity >= 1 additionally lists each revision's root
// objects and object-group count.
func (s *OneStoreFile) Dump(w io.Writer, verbosity int) error {
	fmt.Fprintf(w, "\n\t------[ OneStore file ]------\n\n")
	tw := tabwriter.NewWriter(w, 1, 1, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Kind:\t %s\n", s.Kind)
	tw.Flush()

	spaces, rootGosid, order, err := s.OrderedObjectSpaces()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Root object space:\t %s\n", rootGosid.String())

	for _, gosid := range order {
		spaces[gosid].Dump(w, gosid == rootGosid, verbosity)
	}
	return nil
}

// Dump writes one object space's section of the decode dump (spec §6
// "-L"): its gosid, default (current) revision, and every decoded
// revision's identity and dependency edge.
func (sp *ObjectSpace) Dump(w io.Writer, isRoot bool, verbosity int) {
	label := "page"
	if isRoot {
		label = "root"
	}
	fmt.Fprintf(w, "\n\t------[ Object space (%s) %s ]------\n\n", label, sp.Gosid.String())
	tw := tabwriter.NewWriter(w, 1, 1, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Default (current) revision:\t %s\n", sp.DefaultContextRid.String())
	fmt.Fprintf(tw, "Revision count:\t %d\n", len(sp.Order))
	tw.Flush()

	for _, rid := range sp.Order {
		rev := sp.Revisions[rid]
		rev.Dump(w, verbosity)
	}
}

// Dump writes one revision's section of the decode dump (spec §6 "-L"):
// its rid, dependent rid (if any), encryption state, and, at
// verbosity >= 1, its root-object roles and object-group count.
func (m *RevisionManifest) Dump(w io.Writer, verbosity int) {
	tw := tabwriter.NewWriter(w, 1, 1, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t rid:\t %s\n", m.Rid.String())
	if !m.RidDependent.IsNull() {
		fmt.Fprintf(tw, "\t rid_dependent:\t %s\n", m.RidDependent.String())
	}
	if m.OdcsDefault != 0 {
		fmt.Fprintf(tw, "\t encrypted:\t true\n")
	}
	tw.Flush()

	if verbosity < 1 {
		return
	}
	tw = tabwriter.NewWriter(w, 1, 1, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t object groups:\t %d\n", len(m.ObjectGroups))
	for role, oid := range m.RootObjects {
		fmt.Fprintf(tw, "\t root role 0x%x:\t %s\n", role, oid.String())
	}
	tw.Flush()
}
