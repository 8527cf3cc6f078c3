// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"math/rand"
	"testing"
)

func identity(v int) int { return v }

func TestFindExactMatch(t *testing.T) {
	array := []int{1, 3, 5, 7, 9}
	v, idx, ok := Find(array, 5, identity)
	if !ok || v != 5 || idx != 2 {
		t.Errorf("Find(5) = (%d, %d, %v), want (5, 2, true)", v, idx, ok)
	}
	if _, _, ok := Find(array, 4, identity); ok {
		t.Errorf("Find(4) should miss on an array with no 4")
	}
}

func TestLowerBound(t *testing.T) {
	array := []int{2, 4, 4, 8, 10}
	_, idx, ok := LowerBound(array, 5, identity)
	if !ok || idx != 3 {
		t.Errorf("LowerBound(5) index = %d (ok=%v), want 3", idx, ok)
	}
	if _, _, ok := LowerBound(array, 11, identity); ok {
		t.Errorf("LowerBound(11) should miss past the end of the array")
	}
}

func TestUpperBound(t *testing.T) {
	array := []int{2, 4, 4, 8, 10}
	_, idx, ok := UpperBound(array, 5, identity)
	if !ok || idx != 2 {
		t.Errorf("UpperBound(5) index = %d (ok=%v), want 2", idx, ok)
	}
	if _, _, ok := UpperBound(array, 1, identity); ok {
		t.Errorf("UpperBound(1) should miss below the start of the array")
	}
}

// TestBinarySearchRandomized exercises Find/LowerBound/UpperBound
// against a naive linear-scan oracle over random sorted arrays,
// grounded on binary_search.py's Test() (10,000 trials, array sizes
// 1-100, targets 0-210).
func TestBinarySearchRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 10000; trial++ {
		n := 1 + rng.Intn(100)
		array := make([]int, n)
		v := 0
		for i := range array {
			v += rng.Intn(5)
			array[i] = v
		}
		target := rng.Intn(211)

		wantFound, wantIdx := linearFind(array, target)
		_, gotIdx, gotFound := Find(array, target, identity)
		if gotFound != wantFound || (wantFound && gotIdx != wantIdx) {
			t.Fatalf("Find(%v, %d) = (%d, %v), want (%d, %v)", array, target, gotIdx, gotFound, wantIdx, wantFound)
		}

		wantLoIdx, wantLoOk := linearLowerBound(array, target)
		_, gotLoIdx, gotLoOk := LowerBound(array, target, identity)
		if gotLoOk != wantLoOk || (wantLoOk && gotLoIdx != wantLoIdx) {
			t.Fatalf("LowerBound(%v, %d) = (%d, %v), want (%d, %v)", array, target, gotLoIdx, gotLoOk, wantLoIdx, wantLoOk)
		}

		wantHiIdx, wantHiOk := linearUpperBound(array, target)
		_, gotHiIdx, gotHiOk := UpperBound(array, target, identity)
		if gotHiOk != wantHiOk || (wantHiOk && gotHiIdx != wantHiIdx) {
			t.Fatalf("UpperBound(%v, %d) = (%d, %v), want (%d, %v)", array, target, gotHiIdx, gotHiOk, wantHiIdx, wantHiOk)
		}
	}
}

func linearFind(array []int, target int) (bool, int) {
	for i, v := range array {
		if v == target {
			return true, i
		}
	}
	return false, -1
}

func linearLowerBound(array []int, target int) (int, bool) {
	for i, v := range array {
		if v >= target {
			return i, true
		}
	}
	return -1, false
}

func linearUpperBound(array []int, target int) (int, bool) {
	best := -1
	for i, v := range array {
		if v <= target {
			best = i
		}
	}
	return best, best >= 0
}

func filetimePtr(v uint64) *FileTime64 {
	ft := FileTime64(v)
	return &ft
}

// TestGetVersionsReconstructsHistoryWithConflictsAndCoalescing exercises
// ObjectTreeBuilder.GetVersions end to end (spec §4.10, grounded on
// object_tree_builder.py's ObjectTreeBuilder.GetVersions): discovering
// a page series through the root content's ElementChildNodes, cross-
// space timestamp assembly via VersionByTimestamp, conflict-space page
// injection with author override, and same-author time-span
// coalescing. The root object space is built from real property sets
// so the ElementChildNodes/ChildGraphSpaceElementNodes traversal runs
// through Node.Children/ObjectSpaceIDs; the page and conflict object
// spaces are built directly as RevisionContext literals since their
// content is irrelevant to the history assembly under test.
func TestGetVersionsReconstructsHistoryWithConflictsAndCoalescing(t *testing.T) {
	guidRoot := GUID{0x01}
	guidPage := GUID{0x02}
	guidConflict := GUID{0x03}

	rootGosid := ExGUID{GUID: guidRoot, N: 1}
	pageGosid := ExGUID{GUID: guidPage, N: 1}
	conflictGosid := ExGUID{GUID: guidConflict, N: 1}

	// Root object space: a content node whose ElementChildNodes points
	// at a page-series node, whose ChildGraphSpaceElementNodes names
	// the page's object space.
	oidContent := ExGUID{GUID: guidRoot, N: 2}
	oidSeries := ExGUID{GUID: guidRoot, N: 3}

	contentPS := &PropertySet{
		JCID: JCIDPageNode,
		Properties: map[PropertyID]Property{
			PropElementChildNodes: {ID: PropElementChildNodes, Type: PropertyTypeArrayOfObjectIDs, ObjectIDs: []CompactID{{N: 3, Index: 1}}},
		},
		Order: []PropertyID{PropElementChildNodes},
	}
	seriesPS := &PropertySet{
		JCID: JCIDPageNode,
		Properties: map[PropertyID]Property{
			PropChildGraphSpaceElementNodes: {ID: PropChildGraphSpaceElementNodes, Type: PropertyTypeArrayOfContextIDs, ContextIDs: []ExGUID{pageGosid}},
		},
		Order: []PropertyID{PropChildGraphSpaceElementNodes},
	}

	table := &GlobalIDTable{entries: map[uint32]GUID{1: guidRoot}}
	group := &ObjectGroup{
		ID: ExGUID{GUID: guidRoot, N: 99},
		objects: map[ExGUID]*PropertySet{
			oidContent: contentPS,
			oidSeries:  seriesPS,
		},
		table: table,
	}
	rootRev := &RevisionManifest{
		Rid:           ExGUID{GUID: guidRoot, N: 100},
		GlobalIDTable: table,
		ObjectGroups:  map[ExGUID]*ObjectGroup{group.ID: group},
		RootObjects:   map[uint32]ExGUID{RootRoleContents: oidContent},
	}
	rootRC, err := newRevisionContext(nil, rootGosid, 0, rootRev)
	if err != nil {
		t.Fatalf("newRevisionContext(root) failed: %v", err)
	}
	rootOSC := &ObjectSpaceContext{
		GOSID:        rootGosid,
		OSIndex:      0,
		RootRevision: rootRC,
		Revisions:    map[ExGUID]*RevisionContext{rootRC.RID: rootRC},
	}

	const (
		t1 = 1_000_000
		t2 = 3_000_000
		t3 = 100_000_000_000
		t4 = 100_001_000_000
	)

	rcA1 := &RevisionContext{RID: ExGUID{GUID: guidPage, N: 11}, GOSID: pageGosid, OSIndex: 1, LastModifiedTimestamp: filetimePtr(t1), LastModifiedBy: "alice", PagePersistentGUID: "page-a", PageTitle: "Page One", PageHash: []byte("h1")}
	rcA2 := &RevisionContext{RID: ExGUID{GUID: guidPage, N: 12}, GOSID: pageGosid, OSIndex: 1, LastModifiedTimestamp: filetimePtr(t2), LastModifiedBy: "alice", PagePersistentGUID: "page-a", PageTitle: "Page One v2", PageHash: []byte("h2")}
	rcA3 := &RevisionContext{RID: ExGUID{GUID: guidPage, N: 13}, GOSID: pageGosid, OSIndex: 1, LastModifiedTimestamp: filetimePtr(t3), LastModifiedBy: "bob", PagePersistentGUID: "page-a", PageTitle: "Page One v3", PageHash: []byte("h3")}
	rcA4 := &RevisionContext{RID: ExGUID{GUID: guidPage, N: 14}, GOSID: pageGosid, OSIndex: 1, LastModifiedTimestamp: filetimePtr(t4), LastModifiedBy: "bob", PagePersistentGUID: "page-a", PageTitle: "Page One v4", PageHash: []byte("h4")}

	pageOSC := &ObjectSpaceContext{
		GOSID:             pageGosid,
		OSIndex:           1,
		Versions:          []*RevisionContext{rcA1, rcA2, rcA3, rcA4},
		VersionTimestamps: []int64{t1, t2, t3, t4},
	}

	rcC1 := &RevisionContext{RID: ExGUID{GUID: guidConflict, N: 21}, GOSID: conflictGosid, OSIndex: 2, LastModifiedTimestamp: filetimePtr(t2), ConflictAuthor: "carol", PagePersistentGUID: "conflict-a", PageTitle: "Conflict Page", PageHash: []byte("c1")}
	conflictOSC := &ObjectSpaceContext{
		GOSID:             conflictGosid,
		OSIndex:           2,
		IsConflictSpace:   true,
		Versions:          []*RevisionContext{rcC1},
		VersionTimestamps: []int64{t2},
	}

	b := &ObjectTreeBuilder{
		RootGosid: rootGosid,
		ObjectSpaces: map[ExGUID]*ObjectSpaceContext{
			rootGosid:     rootOSC,
			pageGosid:     pageOSC,
			conflictGosid: conflictOSC,
		},
		combineRevisionsTimeSpan: int64(60) * 60 * 1000 * 10000, // 60 minutes, in 100ns ticks
	}

	versions, err := b.GetVersions()
	if err != nil {
		t.Fatalf("GetVersions() failed: %v", err)
	}

	if len(versions) != 3 {
		t.Fatalf("GetVersions() returned %d versions, want 3: %+v", len(versions), versions)
	}

	v1, v2, v3 := versions[0], versions[1], versions[2]

	if v1.Timestamp != t1 || v1.Author != "alice" || len(v1.Pages) != 1 {
		t.Errorf("versions[0] = %+v, want {Timestamp:%d Author:alice len(Pages):1}", v1, int64(t1))
	}

	if v2.Timestamp != t2 || v2.Author != "carol" {
		t.Errorf("versions[1] = %+v, want {Timestamp:%d Author:carol}", v2, int64(t2))
	}
	if len(v2.Pages) != 2 {
		t.Fatalf("versions[1].Pages = %d entries, want 2 (page-a v2 + conflict page)", len(v2.Pages))
	}
	var sawConflict bool
	for _, p := range v2.Pages {
		if p.ConflictOf == "carol" {
			sawConflict = true
			if p.PagePersistentGUID != "conflict-a" {
				t.Errorf("conflict page guid = %q, want conflict-a", p.PagePersistentGUID)
			}
		}
	}
	if !sawConflict {
		t.Errorf("versions[1].Pages did not include a page with ConflictOf=carol: %+v", v2.Pages)
	}

	// rcA3 (bob, t3) and rcA4 (bob, t4) are within the 60-minute
	// coalescing window and share an author, so they must merge into a
	// single trailing version carrying rcA4's timestamp and content.
	if v3.Timestamp != t4 {
		t.Errorf("versions[2].Timestamp = %d, want %d (coalesced forward to the later same-author revision)", v3.Timestamp, int64(t4))
	}
	if v3.Author != "bob" {
		t.Errorf("versions[2].Author = %q, want bob", v3.Author)
	}
	if len(v3.Pages) != 1 || v3.Pages[0].Hash == nil || string(v3.Pages[0].Hash) != "h4" {
		t.Errorf("versions[2].Pages = %+v, want a single page-a page with hash h4 (coalescing keeps the later revision's content)", v3.Pages)
	}
}
