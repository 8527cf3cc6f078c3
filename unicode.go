// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"golang.org/x/text/encoding/unicode"
)

// DecodeUTF16String decodes a raw little-endian UTF-16 byte blob into a
// Go string, stripping a single trailing NUL terminator pair if
// present.
func DecodeUTF16String(data []byte) (string, error) {
	if len(data) >= 2 && data[len(data)-2] == 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-2]
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
