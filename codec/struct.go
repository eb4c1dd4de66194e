// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"math"
	"math/big"

	"github.com/luxfi/umb/types"
)

// PackStruct serializes record according to st's declared layout,
// implementing the seven-step algorithm of spec.md §4.3: padding and
// fixed-size attributes accumulate MSB-first in a private bit buffer
// that is drained byte-by-byte; variable-size attributes (string,
// rational) require the buffer to be byte-aligned and are emitted in
// their framed form directly to the output stream.
func PackStruct(st *types.StructType, record types.StructValue) ([]byte, error) {
	var out []byte
	var bb bitBuffer

	for i, f := range st.Fields {
		switch field := f.(type) {
		case types.Padding:
			bb.pushBits(0, field.Bits)
			out = bb.drainBytes(out)

		case types.Attribute:
			switch field.Type {
			case types.Bool, types.Int, types.Uint, types.Double:
				bits, err := fixedAttributeBits(field, record)
				if err != nil {
					return nil, fmt.Errorf("field %d (%s): %w", i, field.Name, err)
				}
				bb.pushBits(bits, field.Size)
				out = bb.drainBytes(out)

			case types.String, types.Rational:
				if !bb.aligned() {
					return nil, fmt.Errorf("%w: field %d (%s) requires byte alignment", ErrBufferNotAligned, i, field.Name)
				}
				framed, err := variableAttributeBytes(field, record)
				if err != nil {
					return nil, fmt.Errorf("field %d (%s): %w", i, field.Name, err)
				}
				out = append(out, framed...)

			default:
				return nil, fmt.Errorf("%w: field %d (%s): type %s", ErrSizeTypeMismatch, i, field.Name, field.Type)
			}
		}
	}

	if !bb.aligned() {
		return nil, fmt.Errorf("%w: trailing bits after last field; producer must pad to a byte boundary", ErrBufferNotAligned)
	}
	return out, nil
}

// fixedAttributeBits produces the raw bit pattern (low Size bits
// meaningful) for a fixed-size attribute's value.
func fixedAttributeBits(a types.Attribute, record types.StructValue) (uint64, error) {
	v, ok := record[a.Name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, a.Name)
	}
	switch a.Type {
	case types.Bool:
		b, ok := v.(bool)
		if !ok {
			return 0, fmt.Errorf("%w: %s expected bool, got %T", ErrSizeTypeMismatch, a.Name, v)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case types.Int, types.Uint:
		bi, err := toBigInt(v)
		if err != nil {
			return 0, err
		}
		if fits, lo, hi := fitsInWidthBits(bi, a.Type == types.Int, a.Size); !fits {
			return 0, fmt.Errorf("%w: %s value %s outside %d-bit range [%s, %s]", ErrIntegerOutOfRange, a.Name, bi, a.Size, lo, hi)
		}
		return maskedBits(bi, a.Size), nil
	case types.Double:
		f, ok := asFloat64(v)
		if !ok {
			return 0, fmt.Errorf("%w: %s expected double, got %T", ErrSizeTypeMismatch, a.Name, v)
		}
		return math.Float64bits(f), nil
	default:
		return 0, fmt.Errorf("%w: %s is not fixed-size", ErrSizeTypeMismatch, a.Type)
	}
}

func variableAttributeBytes(a types.Attribute, record types.StructValue) ([]byte, error) {
	v, ok := record[a.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, a.Name)
	}
	switch a.Type {
	case types.String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expected string, got %T", ErrSizeTypeMismatch, a.Name, v)
		}
		return EncodeFramedString(s)
	case types.Rational:
		r, ok := v.(*big.Rat)
		if !ok {
			return nil, fmt.Errorf("%w: %s expected rational, got %T", ErrSizeTypeMismatch, a.Name, v)
		}
		return EncodeFramedRational(r)
	default:
		return nil, fmt.Errorf("%w: %s is not variable-size", ErrSizeTypeMismatch, a.Type)
	}
}

// UnpackStruct mirrors PackStruct, pulling bytes on demand into the bit
// buffer and extracting fields from its LSB side (the tail).
func UnpackStruct(st *types.StructType, b []byte) (types.StructValue, error) {
	record := types.StructValue{}
	var bb bitBuffer
	pos := 0

	ensureBits := func(n uint) error {
		for uint(len(bb.bits)) < n {
			if pos >= len(b) {
				return fmt.Errorf("%w: need %d more bits", ErrTruncatedInput, n-uint(len(bb.bits)))
			}
			bb.feed(b[pos])
			pos++
		}
		return nil
	}

	for i, f := range st.Fields {
		switch field := f.(type) {
		case types.Padding:
			if err := ensureBits(field.Bits); err != nil {
				return nil, err
			}
			if _, err := bb.takeBits(field.Bits); err != nil {
				return nil, err
			}

		case types.Attribute:
			switch field.Type {
			case types.Bool, types.Int, types.Uint, types.Double:
				if err := ensureBits(field.Size); err != nil {
					return nil, fmt.Errorf("field %d (%s): %w", i, field.Name, err)
				}
				bits, err := bb.takeBits(field.Size)
				if err != nil {
					return nil, fmt.Errorf("field %d (%s): %w", i, field.Name, err)
				}
				record[field.Name] = decodeFixedAttributeBits(field, bits)

			case types.String, types.Rational:
				if !bb.aligned() {
					return nil, fmt.Errorf("%w: field %d (%s) requires byte alignment", ErrBufferNotAligned, i, field.Name)
				}
				switch field.Type {
				case types.String:
					s, n, err := DecodeFramedString(b[pos:])
					if err != nil {
						return nil, fmt.Errorf("field %d (%s): %w", i, field.Name, err)
					}
					record[field.Name] = s
					pos += n
				case types.Rational:
					r, n, err := DecodeFramedRational(b[pos:])
					if err != nil {
						return nil, fmt.Errorf("field %d (%s): %w", i, field.Name, err)
					}
					record[field.Name] = r
					pos += n
				}

			default:
				return nil, fmt.Errorf("%w: field %d (%s): type %s", ErrSizeTypeMismatch, i, field.Name, field.Type)
			}
		}
	}

	if !bb.aligned() || pos != len(b) {
		return nil, fmt.Errorf("%w: trailing data after last field", ErrBufferNotAligned)
	}
	return record, nil
}

func decodeFixedAttributeBits(a types.Attribute, bits uint64) interface{} {
	switch a.Type {
	case types.Bool:
		return bits&1 != 0
	case types.Int:
		return unmaskSigned(bits, a.Size)
	case types.Uint:
		return new(big.Int).SetUint64(bits)
	case types.Double:
		return math.Float64frombits(bits)
	default:
		return nil
	}
}

func maskedBits(bi *big.Int, size uint) uint64 {
	mask := uint64(1)<<size - 1
	if size == 64 {
		mask = ^uint64(0)
	}
	if bi.Sign() >= 0 {
		return bi.Uint64() & mask
	}
	mod := new(big.Int).Lsh(big.NewInt(1), size)
	twos := new(big.Int).Add(mod, bi)
	return twos.Uint64() & mask
}

func unmaskSigned(bits uint64, size uint) *big.Int {
	v := new(big.Int).SetUint64(bits)
	if size > 0 && bits&(uint64(1)<<(size-1)) != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), size)
		v.Sub(v, mod)
	}
	return v
}

func fitsInWidthBits(bi *big.Int, signed bool, bits uint) (bool, *big.Int, *big.Int) {
	var lo, hi *big.Int
	if signed {
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits-1), big.NewInt(1))
		lo = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits-1))
	} else {
		lo = big.NewInt(0)
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	}
	return bi.Cmp(lo) >= 0 && bi.Cmp(hi) <= 0, lo, hi
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
