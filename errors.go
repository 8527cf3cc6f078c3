// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "errors"

// Error taxonomy (spec §7). Each is a package-level sentinel, the way
// the teacher declares ErrInvalidPESize, ErrOutsideBoundary, etc. in
// helper.go; callers compare with errors.Is and call sites wrap with
// fmt.Errorf("...: %w", err) for context.
var (
	// ErrEndOfBuffer is a bounds violation in the byte reader.
	ErrEndOfBuffer = errors.New("onestore: attempted read past end of buffer")

	// ErrUnexpectedFileNode is raised when a file-node id is not in the
	// expected vocabulary at the current position in a node list.
	ErrUnexpectedFileNode = errors.New("onestore: unexpected file node")

	// ErrRevisionMismatch is raised when a dependent revision referenced
	// by id is not present in the already-decoded set, or when its
	// odcsDefault does not match the dependent's.
	ErrRevisionMismatch = errors.New("onestore: revision mismatch")

	// ErrObjectNotFound is raised when a CompactID or ExGUID cannot be
	// resolved within its revision.
	ErrObjectNotFound = errors.New("onestore: object not found")

	// ErrCircularObjectReference is raised when object-graph
	// construction revisits an object that is mid-construction.
	ErrCircularObjectReference = errors.New("onestore: Circular reference to object")

	// ErrInvalidFile is raised when the file header signature or
	// version doesn't match a recognized .one/.onetoc2 image.
	ErrInvalidFile = errors.New("onestore: not a recognized OneStore file")

	// ErrMisuse is raised for CLI-level argument combinations the
	// format doesn't support (spec §6 scenario 6: -R without -r on a
	// .onetoc2 file).
	ErrMisuse = errors.New("onestore: invalid option combination")
)

func errInvalidClone(msg string) error {
	return errors.New("onestore: " + msg)
}
