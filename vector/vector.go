// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vector implements the homogeneous-sequence-to-bytes layer of
// spec.md §4.4: it composes the scalar and struct codecs into
// length-determined or length-indexed (CSR) byte payloads.
package vector

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/umb/codec"
	"github.com/luxfi/umb/csr"
	"github.com/luxfi/umb/types"
)

// Sentinel error kinds, named after spec.md §4.4/§7.
var (
	ErrChunkSizeMismatch  = errors.New("chunk size mismatch")
	ErrCsrMissing         = errors.New("CSR required but missing")
	ErrCsrInconsistent    = errors.New("CSR inconsistent with payload length")
	ErrEmptyVectorTypeReq = errors.New("empty vector requires an explicit type")
)

// HasCsr reports whether a vector of type t (and, for structs, struct
// type st) unconditionally requires an auxiliary chunk-CSR: bool never
// does (it uses the bitvector layout); string and structs containing a
// variable-size attribute always do; every other common type —
// including rational and rational-interval — is only *conditionally*
// variable-width (see MaybeCsr) and so never unconditionally does.
func HasCsr(t types.CommonType, st *types.StructType) bool {
	switch t {
	case types.Bool:
		return false
	case types.String:
		return true
	case types.Struct:
		return st != nil && st.HasVariableSize()
	default:
		return false
	}
}

// MaybeCsr reports whether t's elements can vary in packed width, so a
// vector of t carries a chunk-CSR only when at least one element's
// encoded size differs from its standard width (spec.md §4.4; ported
// from the reference's `vector_to_bytes`, which emits chunk_ranges
// only `if ... any(len(chunk) != standard_value_type_size(...))`).
// Rational and rational-interval are the only such types: their terms
// may need more than the standard 8/16-byte width.
func MaybeCsr(t types.CommonType) bool {
	switch t {
	case types.Rational, types.RationalInterval:
		return true
	default:
		return false
	}
}

// standardVariableSize returns the byte width a rational/rational-
// interval element is assumed to have when no chunk-CSR is present: a
// standard rational term pair is 8 (signed numerator) + 8 (unsigned
// denominator) = 16 bytes, and a rational-interval is two such terms.
func standardVariableSize(t types.CommonType) (int, bool) {
	switch t {
	case types.Rational:
		return 16, true
	case types.RationalInterval:
		return 32, true
	default:
		return 0, false
	}
}

// Encode renders a homogeneous sequence of scalar values as a byte
// payload plus, when per-element sizes differ, a chunk CSR of length
// len(values)+1. Struct-typed vectors must go through EncodeStruct
// instead, since they need the struct type's layout.
func Encode(values []interface{}, t types.CommonType) ([]byte, []uint64, error) {
	if t == types.Struct {
		return nil, nil, fmt.Errorf("%w: use EncodeStruct for struct vectors", ErrEmptyVectorTypeReq)
	}
	if len(values) == 0 {
		return []byte{}, nil, nil
	}

	if t == types.Bool {
		bits := make([]bool, len(values))
		for i, v := range values {
			b, ok := v.(bool)
			if !ok {
				return nil, nil, fmt.Errorf("element %d: %w: expected bool, got %T", i, codec.ErrUnsupportedValue, v)
			}
			bits[i] = b
		}
		return codec.EncodeBitvector(bits), nil, nil
	}

	if !HasCsr(t, nil) && !MaybeCsr(t) {
		out := make([]byte, 0)
		for i, v := range values {
			b, err := encodeFixedScalar(v, t)
			if err != nil {
				return nil, nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, b...)
		}
		return out, nil, nil
	}

	// String always carries a CSR (reference: `value_type == "string"`
	// forces chunk_ranges unconditionally). Rational/rational-interval
	// only carry one when some element's encoded width isn't standard.
	out := make([]byte, 0)
	chunkSizes := make([]int, len(values))
	standard, hasStandard := standardVariableSize(t)
	needsCsr := HasCsr(t, nil)
	for i, v := range values {
		b, err := encodeVariableScalar(v, t)
		if err != nil {
			return nil, nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, b...)
		chunkSizes[i] = len(b)
		if hasStandard && len(b) != standard {
			needsCsr = true
		}
	}
	if !needsCsr {
		return out, nil, nil
	}
	chunkCsr := make([]uint64, len(values)+1)
	for i, size := range chunkSizes {
		chunkCsr[i+1] = chunkCsr[i] + uint64(size)
	}
	return out, chunkCsr, nil
}

// Decode is the inverse of Encode: given a payload, an optional chunk
// CSR (nil when the type has no CSR), and the expected element count n,
// it reconstructs the value slice.
func Decode(payload []byte, chunkCsr []uint64, n int, t types.CommonType) ([]interface{}, error) {
	if n == 0 {
		return []interface{}{}, nil
	}

	if t == types.Bool {
		bits := codec.DecodeBitvector(payload)
		truncated, err := codec.TruncateBits(bits, n)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, n)
		for i, b := range truncated {
			out[i] = b
		}
		return out, nil
	}

	if !HasCsr(t, nil) && chunkCsr == nil {
		size, ok := standardVariableSize(t)
		if !ok {
			var err error
			size, err = fixedScalarSize(t)
			if err != nil {
				return nil, err
			}
		}
		if len(payload) != size*n {
			return nil, fmt.Errorf("%w: expected %d bytes for %d elements of size %d, got %d", ErrChunkSizeMismatch, size*n, n, size, len(payload))
		}
		out := make([]interface{}, n)
		for i := 0; i < n; i++ {
			chunk := payload[i*size : (i+1)*size]
			v, err := decodeScalarChunk(chunk, t)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}

	if chunkCsr == nil {
		return nil, ErrCsrMissing
	}
	if err := csr.ValidateCsr(chunkCsr); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCsrInconsistent, err)
	}
	if csr.Len(chunkCsr) != n {
		return nil, fmt.Errorf("%w: CSR describes %d elements, expected %d", ErrCsrInconsistent, csr.Len(chunkCsr), n)
	}
	if int(chunkCsr[n]) != len(payload) {
		return nil, fmt.Errorf("%w: CSR total %d != payload length %d", ErrCsrInconsistent, chunkCsr[n], len(payload))
	}
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		chunk := payload[chunkCsr[i]:chunkCsr[i+1]]
		v, err := decodeVariableScalar(chunk, t)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// decodeScalarChunk decodes a single equal-sized chunk, dispatching to
// the fixed-width or variable-width scalar decoder depending on t —
// used when no chunk CSR is present (either a genuinely fixed-width
// type, or a rational/rational-interval vector whose elements all
// happen to be the standard width).
func decodeScalarChunk(chunk []byte, t types.CommonType) (interface{}, error) {
	switch t {
	case types.Rational, types.RationalInterval:
		return decodeVariableScalar(chunk, t)
	default:
		return decodeFixedScalar(chunk, t)
	}
}

func fixedScalarSize(t types.CommonType) (int, error) {
	switch t {
	case types.DoubleInterval:
		return 16, nil
	default:
		return codec.FixedIntSize(t)
	}
}

func encodeFixedScalar(v interface{}, t types.CommonType) ([]byte, error) {
	switch t {
	case types.Double:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: expected double, got %T", codec.ErrUnsupportedValue, v)
		}
		return codec.EncodeDouble(f), nil
	case types.DoubleInterval:
		iv, ok := v.(types.Interval)
		if !ok {
			return nil, fmt.Errorf("%w: expected interval, got %T", codec.ErrUnsupportedValue, v)
		}
		return codec.EncodeDoubleInterval(iv)
	default:
		return codec.EncodeFixedInt(v, t)
	}
}

func decodeFixedScalar(b []byte, t types.CommonType) (interface{}, error) {
	switch t {
	case types.Double:
		return codec.DecodeDouble(b)
	case types.DoubleInterval:
		return codec.DecodeDoubleInterval(b)
	default:
		return codec.DecodeFixedInt(b, t)
	}
}

func encodeVariableScalar(v interface{}, t types.CommonType) ([]byte, error) {
	switch t {
	case types.String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %T", codec.ErrUnsupportedValue, v)
		}
		return codec.EncodeStringBytes(s), nil
	case types.Rational:
		r, ok := v.(*big.Rat)
		if !ok {
			return nil, fmt.Errorf("%w: expected rational, got %T", codec.ErrUnsupportedValue, v)
		}
		termSize := codec.RationalTermSize(r.Num(), r.Denom())
		return codec.EncodeRationalTerms(r, termSize)
	case types.RationalInterval:
		iv, ok := v.(types.Interval)
		if !ok {
			return nil, fmt.Errorf("%w: expected interval, got %T", codec.ErrUnsupportedValue, v)
		}
		termSize, err := rationalIntervalTermSize(iv)
		if err != nil {
			return nil, err
		}
		return codec.EncodeRationalIntervalTerms(iv, termSize)
	default:
		return nil, fmt.Errorf("%w: %s is not variable-width", codec.ErrUnsupportedValue, t)
	}
}

func decodeVariableScalar(chunk []byte, t types.CommonType) (interface{}, error) {
	switch t {
	case types.String:
		return codec.DecodeStringBytes(chunk)
	case types.Rational:
		if len(chunk)%2 != 0 {
			return nil, fmt.Errorf("%w: rational chunk length %d is not even", ErrChunkSizeMismatch, len(chunk))
		}
		return codec.DecodeRationalTerms(chunk, len(chunk)/2)
	case types.RationalInterval:
		if len(chunk)%4 != 0 {
			return nil, fmt.Errorf("%w: rational-interval chunk length %d is not a multiple of 4", ErrChunkSizeMismatch, len(chunk))
		}
		return codec.DecodeRationalIntervalTerms(chunk, len(chunk)/4)
	default:
		return nil, fmt.Errorf("%w: %s is not variable-width", codec.ErrUnsupportedValue, t)
	}
}

func rationalIntervalTermSize(iv types.Interval) (int, error) {
	if iv.Base != types.Rational {
		return 0, fmt.Errorf("%w: interval base is not rational", codec.ErrSizeTypeMismatch)
	}
	lw := codec.RationalTermSize(iv.RLeft.Num(), iv.RLeft.Denom())
	rw := codec.RationalTermSize(iv.RRight.Num(), iv.RRight.Denom())
	if rw > lw {
		return rw, nil
	}
	return lw, nil
}
