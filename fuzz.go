// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

// Fuzz exercises the full decode-to-document-tree path over arbitrary
// bytes, matching the teacher's Fuzz(data []byte) int over
// NewBytes+Parse in fuzz.go.
func Fuzz(data []byte) int {
	store, err := OpenBytes(data)
	if err != nil {
		return 0
	}
	defer store.Close()

	builder, err := NewObjectTreeBuilder(store, 60)
	if err != nil {
		return 0
	}

	if _, err := builder.GetVersions(); err != nil {
		return 0
	}

	_ = builder.BuildJsonTree("onenote-document")
	return 1
}
