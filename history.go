// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"cmp"
	"fmt"
	"sort"
)

// Find returns the index of the first element of array equal to
// target under key, or false if none matches. array must already be
// sorted ascending by key (spec §4.10; grounded on binary_search.py's
// Find).
func Find[T any, K cmp.Ordered](array []T, target K, key func(T) K) (T, int, bool) {
	v, idx, ok := LowerBound(array, target, key)
	if !ok || key(v) != target {
		var zero T
		return zero, -1, false
	}
	return v, idx, true
}

// LowerBound returns the first element of array whose key is >=
// target (grounded on binary_search.py's LowerBound).
func LowerBound[T any, K cmp.Ordered](array []T, target K, key func(T) K) (T, int, bool) {
	lo, hi := 0, len(array)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if key(array[mid]) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(array) {
		var zero T
		return zero, -1, false
	}
	return array[lo], lo, true
}

// UpperBound returns the last element of array whose key is <=
// target. Note this differs from the C++ std::upper_bound semantics:
// here it is the tightest element not exceeding target (grounded on
// binary_search.py's UpperBound).
func UpperBound[T any, K cmp.Ordered](array []T, target K, key func(T) K) (T, int, bool) {
	lo, hi := 0, len(array)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if key(array[mid]) <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx := lo - 1
	if idx < 0 {
		var zero T
		return zero, -1, false
	}
	return array[idx], idx, true
}

// HistoryPage is one object space's contribution to a HistoryVersion:
// the page's title, persistent guid, level, and content hash at the
// revision selected for this version (spec §4.10).
type HistoryPage struct {
	Gosid              ExGUID
	PagePersistentGUID string
	Title              string
	Level              *uint32
	Hash               []byte
	Revision           *RevisionContext
	ConflictOf         string // non-empty for a conflict-bucket page
}

// HistoryVersion is one entry of the unified, cross-space revision
// history (spec §4.10): a timestamp, the responsible author, and the
// set of pages (plus conflict pages and data files) visible as of that
// timestamp.
type HistoryVersion struct {
	Timestamp int64
	Author    string
	Pages     []*HistoryPage
	DataFiles []*DataFile
}

// fingerprint is the sorted (guid, hash) set used to detect that two
// adjacent versions carry identical content (spec §4.10 "skip
// emission if identical").
func (v *HistoryVersion) fingerprint() string {
	type pair struct {
		guid string
		hash string
	}
	pairs := make([]pair, 0, len(v.Pages))
	for _, p := range v.Pages {
		pairs = append(pairs, pair{p.PagePersistentGUID, fmt.Sprintf("%x", p.Hash)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].guid != pairs[j].guid {
			return pairs[i].guid < pairs[j].guid
		}
		return pairs[i].hash < pairs[j].hash
	})
	out := ""
	for _, p := range pairs {
		out += p.guid + ":" + p.hash + ";"
	}
	return out
}

// extensionBucket tracks the "-1".."-99" suffix allocation used when
// two distinct page series collide on the same persistent guid at
// overlapping timestamps (spec §4.10).
type extensionBucket struct {
	gosid ExGUID
	hash  string
}

// GetVersions builds the unified, timestamp-ordered revision history
// across every object space rooted at the document's root graph space
// (spec §4.10; grounded on object_tree_builder.py's
// ObjectTreeBuilder.GetVersions). combineRevisionsMinutes was supplied
// to NewObjectTreeBuilder and controls same-author coalescing.
func (b *ObjectTreeBuilder) GetVersions() ([]*HistoryVersion, error) {
	if b.versions != nil {
		return b.versions, nil
	}

	root, ok := b.ObjectSpaces[b.RootGosid]
	if !ok || root.RootRevision == nil {
		return nil, ErrObjectNotFound
	}
	rootContent := root.RootRevision.GetRootObject(RootRoleContents)
	if rootContent == nil {
		return nil, ErrObjectNotFound
	}

	// The "current index": every page-series object space reachable
	// from the root's ElementChildNodes, paired with its os_index for
	// later re-sorting of same-timestamp pages.
	var indexed []*ObjectSpaceContext
	for _, pageSeries := range rootContent.Children(PropElementChildNodes) {
		for _, gosid := range pageSeries.ObjectSpaceIDs(PropChildGraphSpaceElementNodes) {
			if osc, ok := b.ObjectSpaces[gosid]; ok {
				indexed = append(indexed, osc)
			}
		}
	}

	timestampSet := make(map[int64]bool)
	for _, osc := range indexed {
		for _, ts := range osc.VersionTimestamps {
			timestampSet[ts] = true
		}
	}
	var conflictSpaces []*ObjectSpaceContext
	for _, osc := range b.ObjectSpaces {
		if osc.IsConflictSpace {
			conflictSpaces = append(conflictSpaces, osc)
			for _, ts := range osc.VersionTimestamps {
				timestampSet[ts] = true
			}
		}
	}

	timestamps := make([]int64, 0, len(timestampSet))
	for ts := range timestampSet {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	buckets := make(map[string][]extensionBucket) // base guid -> active extension buckets
	var out []*HistoryVersion

	for _, ts := range timestamps {
		type pageEntry struct {
			osIndex int
			page    *HistoryPage
		}
		var entries []pageEntry

		for _, osc := range indexed {
			rc := osc.VersionByTimestamp(ts, false, true)
			if rc == nil {
				continue
			}
			page := &HistoryPage{
				Gosid:              osc.GOSID,
				PagePersistentGUID: rc.PagePersistentGUID,
				Title:              rc.PageTitle,
				Level:              rc.PageLevel,
				Hash:               rc.PageHash,
				Revision:           rc,
			}
			assignBucket(buckets, page, ts)
			entries = append(entries, pageEntry{osc.OSIndex, page})
		}

		sort.SliceStable(entries, func(i, j int) bool { return entries[i].osIndex < entries[j].osIndex })

		version := &HistoryVersion{Timestamp: ts}
		for _, e := range entries {
			version.Pages = append(version.Pages, e.page)
		}

		var author string
		for _, osc := range indexed {
			if rc := osc.VersionByTimestamp(ts, false, false); rc != nil && rc.LastModifiedBy != "" {
				author = rc.LastModifiedBy
			}
		}
		for _, cs := range conflictSpaces {
			rc := cs.VersionByTimestamp(ts, false, false)
			if rc == nil {
				continue
			}
			page := &HistoryPage{
				Gosid:              cs.GOSID,
				PagePersistentGUID: rc.PagePersistentGUID,
				Title:              rc.PageTitle,
				Hash:               rc.PageHash,
				Revision:           rc,
				ConflictOf:         rc.ConflictAuthor,
			}
			version.Pages = append(version.Pages, page)
			for name, df := range rc.DataFiles {
				_ = name
				version.DataFiles = append(version.DataFiles, df)
			}
			if rc.ConflictAuthor != "" {
				author = rc.ConflictAuthor
			}
		}
		version.Author = author

		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.fingerprint() == version.fingerprint() {
				continue
			}
			if b.combineRevisionsTimeSpan > 0 && prev.Author == version.Author &&
				version.Timestamp-prev.Timestamp <= b.combineRevisionsTimeSpan {
				prev.Timestamp = version.Timestamp
				prev.Pages = version.Pages
				prev.DataFiles = append(prev.DataFiles, version.DataFiles...)
				continue
			}
		}
		out = append(out, version)
	}

	b.versions = out
	return out, nil
}

// assignBucket implements the extension-bucket conflict resolution
// (spec §4.10): each object space carrying a given persistent guid gets
// its own bucket. The first space keeps the plain guid; a later space
// whose content hash differs from every existing bucket's is labelled
// with the next suffix, guid-1, guid-2, ...; a space whose hash equals
// an existing bucket's takes that bucket over. Buckets are never
// released once allocated, and ts is not consulted.
func assignBucket(buckets map[string][]extensionBucket, page *HistoryPage, ts int64) {
	base := page.PagePersistentGUID
	hash := fmt.Sprintf("%x", page.Hash)
	active := buckets[base]

	for i, bk := range active {
		if bk.gosid == page.Gosid {
			active[i].hash = hash
			buckets[base] = active
			if i > 0 {
				page.PagePersistentGUID = fmt.Sprintf("%s-%d", base, i)
			}
			return
		}
	}

	for i, bk := range active {
		if bk.hash == hash {
			active[i] = extensionBucket{gosid: page.Gosid, hash: hash}
			buckets[base] = active
			if i > 0 {
				page.PagePersistentGUID = fmt.Sprintf("%s-%d", base, i)
			}
			return
		}
	}

	n := len(active)
	if n > 99 {
		n = 99
	}
	active = append(active, extensionBucket{gosid: page.Gosid, hash: hash})
	buckets[base] = active
	if n > 0 {
		page.PagePersistentGUID = fmt.Sprintf("%s-%d", base, n)
	}
}
