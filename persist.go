// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// WriteVersionFiles renders one HistoryVersion's pages to directory
// as "<guid>.json" files plus an index.txt listing title/level, and
// returns the pages whose hash changed from prevPages (spec §6
// "--output-directory"; grounded on object_tree_builder.py's
// ObjectTreeBuilder._WriteVersionFiles). When incremental is true,
// pages whose hash is unchanged from prevPages are skipped entirely.
func WriteVersionFiles(version *HistoryVersion, directory string, prevPages map[string]*HistoryPage, incremental bool) ([]*HistoryPage, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, err
	}

	var changed []*HistoryPage
	for _, page := range version.Pages {
		prev, hadPrev := prevPages[page.PagePersistentGUID]
		if hadPrev {
			if !bytesEqual(prev.Hash, page.Hash) {
				changed = append(changed, page)
			} else if incremental {
				continue
			}
		}

		if page.Revision == nil {
			continue
		}
		tree := page.Revision.MakeJsonTree()
		data, err := json.MarshalIndent(tree, "", "\t")
		if err != nil {
			return nil, err
		}
		name := page.PagePersistentGUID + ".json"
		if err := os.WriteFile(filepath.Join(directory, name), data, 0o644); err != nil {
			return nil, err
		}
	}

	for _, df := range version.DataFiles {
		if err := os.WriteFile(filepath.Join(directory, df.Filename), df.Data, 0o644); err != nil {
			return nil, err
		}
	}

	index, err := os.Create(filepath.Join(directory, "index.txt"))
	if err != nil {
		return nil, err
	}
	defer index.Close()

	sorted := make([]*HistoryPage, len(version.Pages))
	copy(sorted, version.Pages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Gosid.String() < sorted[j].Gosid.String() })

	for _, page := range sorted {
		level := 1
		if page.Level != nil {
			level = int(*page.Level)
		}
		indent := ""
		for i := 1; i < level; i++ {
			indent += "\t"
		}
		fmt.Fprintf(index, "%s%s.json:%s\n", indent, page.PagePersistentGUID, page.Title)
	}

	return changed, nil
}

// MakeVersionFiles writes either a single snapshot (timestamp == 0
// selects the latest version) or, when allRevisions is true, every
// version to its own timestamped subdirectory plus a versions.txt
// ledger recording author/timestamp/added/deleted pages per version
// (spec §6 "-A"/"-timestamp"; grounded on object_tree_builder.py's
// ObjectTreeBuilder.MakeVersionFiles).
func (b *ObjectTreeBuilder) MakeVersionFiles(directory string, allRevisions bool, timestamp int64, incremental bool) error {
	if entries, err := os.ReadDir(directory); err == nil && len(entries) > 0 {
		fmt.Fprintf(os.Stderr, "WARNING: versions directory %s is not empty: will not clean it.\n", directory)
	} else if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	versions, err := b.GetVersions()
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return nil
	}

	if !allRevisions {
		var version *HistoryVersion
		if timestamp != 0 {
			_, idx, ok := UpperBound(versions, timestamp, func(v *HistoryVersion) int64 { return v.Timestamp })
			if !ok {
				return nil
			}
			version = versions[idx]
		} else {
			version = versions[len(versions)-1]
		}
		_, err := WriteVersionFiles(version, directory, nil, false)
		return err
	}

	versionsFile, err := os.Create(filepath.Join(directory, "versions.txt"))
	if err != nil {
		return err
	}
	defer versionsFile.Close()

	prevPages := map[string]*HistoryPage{}

	for _, version := range versions {
		ts := time.Unix(FileTime64(version.Timestamp).UnixSeconds(), 0).UTC()
		versionStr := ts.Format("2006-01-02T15-04-05")
		fmt.Fprintf(os.Stderr, "Edited on %s by %s\n", versionStr, version.Author)

		versionDir := filepath.Join(directory, versionStr)
		changed, err := WriteVersionFiles(version, versionDir, prevPages, incremental)
		if err != nil {
			return err
		}

		fmt.Fprintf(versionsFile, "[version \"v%d\"]\n", version.Timestamp)
		fmt.Fprintf(versionsFile, "\tAUTHOR = %s\n", version.Author)
		fmt.Fprintf(versionsFile, "\tTIMESTAMP = %d\n", FileTime64(version.Timestamp).UnixSeconds())
		fmt.Fprintf(versionsFile, "\tDIRECTORY = %s\n", versionStr)

		nowPages := make(map[string]*HistoryPage, len(version.Pages))
		for _, page := range version.Pages {
			nowPages[page.PagePersistentGUID] = page
		}

		var added, deleted []*HistoryPage
		for guid, page := range nowPages {
			if _, ok := prevPages[guid]; !ok {
				added = append(added, page)
			}
		}
		for guid, page := range prevPages {
			if _, ok := nowPages[guid]; !ok {
				deleted = append(deleted, page)
			}
		}
		sort.Slice(added, func(i, j int) bool { return pageSortKey(added[i]) < pageSortKey(added[j]) })
		sort.Slice(deleted, func(i, j int) bool { return pageSortKey(deleted[i]) < pageSortKey(deleted[j]) })

		type titleMessage struct {
			osIndex int
			text    string
		}
		var messages []titleMessage

		for _, page := range added {
			fmt.Fprintf(versionsFile, "\tADDED = %s.json\n", page.PagePersistentGUID)
			if page.Title != "" {
				messages = append(messages, titleMessage{pageOSIndex(page), "Added page: " + page.Title})
			}
		}
		for _, page := range changed {
			fmt.Fprintf(versionsFile, "\tMODIFIED = %s.json\n", page.PagePersistentGUID)
			if page.Title != "" {
				messages = append(messages, titleMessage{pageOSIndex(page), "Modified page: " + page.Title})
			}
		}
		for _, page := range deleted {
			fmt.Fprintf(versionsFile, "\tDELETED = %s.json\n", page.PagePersistentGUID)
			if page.Title != "" {
				messages = append(messages, titleMessage{pageOSIndex(page), "Deleted page: " + page.Title})
			}
		}

		var title string
		if len(messages) == 1 {
			title = messages[0].text
			messages = nil
		} else {
			switch {
			case len(added) > 0:
				title = "Added"
				if len(changed) > 0 {
					title += ", modified"
				}
			case len(changed) > 0:
				title = "Modified"
			}
			if len(deleted) > 0 {
				if title != "" {
					title += ", deleted"
				} else {
					title = "Deleted"
				}
			}
			title += " pages"
		}
		fmt.Fprintf(versionsFile, "\tTITLE = %s\n", title)

		sort.SliceStable(messages, func(i, j int) bool { return messages[i].osIndex < messages[j].osIndex })
		for _, m := range messages {
			fmt.Fprintf(versionsFile, "\tMESSAGE = %s\n", m.text)
		}
		fmt.Fprintln(versionsFile)

		prevPages = nowPages
	}

	return nil
}

// pageOSIndex returns the object space index a page was built from, or
// 0 if its revision context is unavailable (spec §9 message ordering:
// object_tree_builder.py sorts by (os_index, page_persistent_guid)).
func pageOSIndex(page *HistoryPage) int {
	if page.Revision == nil {
		return 0
	}
	return page.Revision.OSIndex
}

func pageSortKey(page *HistoryPage) string {
	return fmt.Sprintf("%08d:%s", pageOSIndex(page), page.PagePersistentGUID)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
