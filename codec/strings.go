// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"unicode/utf8"
)

// maxFramedLength is the largest byte length a uint16 length prefix can
// describe.
const maxFramedLength = 1<<16 - 1

// EncodeStringBytes renders s as raw UTF-8 bytes, unframed.
func EncodeStringBytes(s string) []byte {
	return []byte(s)
}

// DecodeStringBytes parses raw UTF-8 bytes as a string, validating
// encoding.
func DecodeStringBytes(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrUnsupportedValue)
	}
	return string(b), nil
}

// EncodeFramedString frames s with a 2-byte little-endian length
// prefix followed by its UTF-8 bytes (spec.md §4.2, §6).
func EncodeFramedString(s string) ([]byte, error) {
	raw := []byte(s)
	if len(raw) > maxFramedLength {
		return nil, fmt.Errorf("%w: string of %d bytes exceeds uint16 frame", ErrLengthMismatch, len(raw))
	}
	w := NewWriter(2 + len(raw))
	w.PackUint16(uint16(len(raw)))
	w.PackBytes(raw)
	return w.Bytes, w.Err
}

// DecodeFramedString reads a 2-byte length-prefixed UTF-8 string,
// returning it and the number of bytes consumed.
func DecodeFramedString(b []byte) (string, int, error) {
	r := NewReader(b)
	n := r.UnpackUint16()
	raw := r.UnpackBytes(int(n))
	if r.Err != nil {
		return "", 0, r.Err
	}
	s, err := DecodeStringBytes(raw)
	if err != nil {
		return "", 0, err
	}
	return s, r.Pos, nil
}
