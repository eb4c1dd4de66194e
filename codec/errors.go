// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec implements the bit-exact scalar and struct binary
// encoders/decoders of the UMB container format (spec.md §4.2, §4.3).
// All multi-byte encodings are little-endian.
package codec

import "errors"

// Sentinel error kinds, named after spec.md §4.2/§4.3/§7.
var (
	ErrIntegerOutOfRange = errors.New("integer out of range")
	ErrUnsupportedValue  = errors.New("unsupported value type")
	ErrLengthMismatch    = errors.New("length mismatch")
	ErrUnknownEndianness = errors.New("unknown endianness")
	ErrBufferNotAligned  = errors.New("bit buffer not byte-aligned")
	ErrMissingField      = errors.New("missing struct field")
	ErrSizeTypeMismatch  = errors.New("size/type mismatch")
	ErrTruncatedInput    = errors.New("truncated input")
)
