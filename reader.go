// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import "encoding/binary"

// Reader is a typed byte reader over a shared, immutable file image
// (spec §4.1). It never copies the underlying bytes: clone and extract
// both produce new windows over the same backing array, the way the
// teacher's structUnpack/ReadUint* family read directly out of
// pe.File.data without copying.
type Reader struct {
	data        []byte
	sliceOffset int // start of this window within data
	length      int // size of this window
	cursor      int // current read position, relative to sliceOffset
}

// NewReader constructs a top-level reader over the whole file image.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, sliceOffset: 0, length: len(data)}
}

// Remaining reports how many unread bytes are left in the window.
func (r *Reader) Remaining() int {
	return r.length - r.cursor
}

// Offset reports the current read position relative to the window start.
func (r *Reader) Offset() int {
	return r.cursor
}

// Length reports the total size of the current window.
func (r *Reader) Length() int {
	return r.length
}

func (r *Reader) checkRead(n int) error {
	if n < 0 || r.cursor+n > r.length {
		return ErrEndOfBuffer
	}
	return nil
}

// Clone produces a new reader over a sub-window of this one. With ref
// non-nil, the receiver must be a top-level (unsliced) reader and ref
// must resolve to a concrete, non-empty-sentinel range; the new window
// is [ref.Stp, ref.Stp+ref.Cb). Otherwise offset/length describe an
// additional window relative to the current cursor.
func (r *Reader) Clone(ref *FileChunkRef, additionalOffset, length int) (*Reader, error) {
	var offset int
	if ref != nil {
		if r.sliceOffset != 0 {
			return nil, errInvalidClone("Clone from FileChunkRef requires a top-level reader")
		}
		if ref.IsNil() || ref.IsZero() {
			return nil, errInvalidClone("Clone from FileChunkRef requires a concrete, non-empty reference")
		}
		offset = int(ref.Stp)
		length = int(ref.Cb)
	} else {
		offset = r.cursor
	}
	offset += additionalOffset
	if offset > r.length {
		return nil, ErrEndOfBuffer
	}
	if length < 0 {
		length = r.length - offset
	} else if offset+length > r.length {
		return nil, ErrEndOfBuffer
	}
	return &Reader{
		data:        r.data,
		sliceOffset: r.sliceOffset + offset,
		length:      length,
	}, nil
}

// Extract carves a prefix off the current window and advances past it,
// or, with a negative length, carves a suffix off the tail and shrinks
// the window to exclude it (spec §4.1).
func (r *Reader) Extract(length int) (*Reader, error) {
	if length < 0 {
		if r.cursor > r.length+length {
			return nil, ErrEndOfBuffer
		}
		sub, err := r.Clone(nil, r.length-r.cursor+length, -length)
		if err != nil {
			return nil, err
		}
		r.length += length
		return sub, nil
	}
	sub, err := r.Clone(nil, 0, length)
	if err != nil {
		return nil, err
	}
	if err := r.Skip(sub.length); err != nil {
		return nil, err
	}
	return sub, nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	if err := r.checkRead(n); err != nil {
		return err
	}
	r.cursor += n
	return nil
}

// Bytes reads and returns the next n bytes, advancing the cursor. The
// returned slice aliases the backing file image.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.checkRead(n); err != nil {
		return nil, err
	}
	start := r.sliceOffset + r.cursor
	r.cursor += n
	return r.data[start : start+n], nil
}

// BytesAt reads n bytes at offset relative to the cursor, without
// advancing it.
func (r *Reader) BytesAt(offset, n int) ([]byte, error) {
	if offset < 0 || r.cursor+offset+n > r.length {
		return nil, ErrEndOfBuffer
	}
	start := r.sliceOffset + r.cursor + offset
	return r.data[start : start+n], nil
}

// U8 reads a little-endian uint8.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadGUID reads a 16-byte GUID.
func (r *Reader) ReadGUID() (GUID, error) {
	b, err := r.Bytes(16)
	if err != nil {
		return GUID{}, err
	}
	var g GUID
	copy(g[:], b)
	return g, nil
}

// ReadExGUID reads a GUID followed by a uint32 n.
func (r *Reader) ReadExGUID() (ExGUID, error) {
	g, err := r.ReadGUID()
	if err != nil {
		return ExGUID{}, err
	}
	n, err := r.U32()
	if err != nil {
		return ExGUID{}, err
	}
	return ExGUID{GUID: g, N: n}, nil
}

// ReadCompactID reads a packed (n:u8, index:u24) compact id.
func (r *Reader) ReadCompactID() (CompactID, error) {
	v, err := r.U32()
	if err != nil {
		return CompactID{}, err
	}
	return CompactID{N: uint8(v & 0xff), Index: v >> 8}, nil
}

// ReadFileChunkRef32 reads a (stp:u32, cb:u32) chunk reference, promoting
// the all-ones 32-bit sentinel to the 64-bit nil sentinel.
func (r *Reader) ReadFileChunkRef32() (FileChunkRef, error) {
	stp, err := r.U32()
	if err != nil {
		return FileChunkRef{}, err
	}
	cb, err := r.U32()
	if err != nil {
		return FileChunkRef{}, err
	}
	return normalizeChunkRef32(stp, cb), nil
}

func normalizeChunkRef32(stp, cb uint32) FileChunkRef {
	if stp == 0xffffffff && cb == 0xffffffff {
		return FileChunkRef{Stp: ^uint64(0), Cb: ^uint64(0)}
	}
	return FileChunkRef{Stp: uint64(stp), Cb: uint64(cb)}
}

// ReadFileChunkRef64x32 reads a (stp:u64, cb:u32) chunk reference.
func (r *Reader) ReadFileChunkRef64x32() (FileChunkRef, error) {
	stp, err := r.U64()
	if err != nil {
		return FileChunkRef{}, err
	}
	cb, err := r.U32()
	if err != nil {
		return FileChunkRef{}, err
	}
	if stp == ^uint64(0) && cb == 0xffffffff {
		return FileChunkRef{Stp: ^uint64(0), Cb: ^uint64(0)}
	}
	return FileChunkRef{Stp: stp, Cb: uint64(cb)}, nil
}

// ReadFileChunkRef64 reads a (stp:u64, cb:u64) chunk reference.
func (r *Reader) ReadFileChunkRef64() (FileChunkRef, error) {
	stp, err := r.U64()
	if err != nil {
		return FileChunkRef{}, err
	}
	cb, err := r.U64()
	if err != nil {
		return FileChunkRef{}, err
	}
	if stp == ^uint64(0) && cb == ^uint64(0) {
		return FileChunkRef{Stp: ^uint64(0), Cb: ^uint64(0)}
	}
	return FileChunkRef{Stp: stp, Cb: cb}, nil
}

// ReadFileTime64 reads a Windows FILETIME.
func (r *Reader) ReadFileTime64() (FileTime64, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return FileTime64(v), nil
}

// String16 reads count UTF-16LE code units (count is supplied by the
// caller, not read from the stream), decoding via golang.org/x/text the
// way the teacher's DecodeUTF16String decodes PE version-resource
// strings.
func (r *Reader) String16(count uint32) (string, error) {
	b, err := r.Bytes(int(count) * 2)
	if err != nil {
		return "", err
	}
	return DecodeUTF16String(b)
}
