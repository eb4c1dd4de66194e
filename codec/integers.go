// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"math/big"

	"github.com/luxfi/umb/types"
)

// FixedIntSize returns the byte width of a fixed-integer or double tag,
// the single source of truth spec.md §4.2 asks the struct and vector
// codecs to share.
func FixedIntSize(t types.CommonType) (int, error) {
	switch t {
	case types.Int16, types.Uint16:
		return 2, nil
	case types.Int32, types.Uint32:
		return 4, nil
	case types.Int64, types.Uint64, types.Double:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: %s is not a fixed-size type", ErrUnsupportedValue, t)
	}
}

// fixedIntBounds returns the inclusive [min, max] range representable
// by a fixed integer tag, as big.Ints for uniform range checking.
func fixedIntBounds(t types.CommonType) (min, max *big.Int) {
	switch t {
	case types.Int16:
		return big.NewInt(-1 << 15), big.NewInt(1<<15 - 1)
	case types.Uint16:
		return big.NewInt(0), big.NewInt(1<<16 - 1)
	case types.Int32:
		return big.NewInt(-1 << 31), big.NewInt(1<<31 - 1)
	case types.Uint32:
		return big.NewInt(0), big.NewInt(1<<32 - 1)
	case types.Int64:
		return big.NewInt(-1 << 63), new(big.Int).SetUint64(1<<63 - 1)
	case types.Uint64:
		max := new(big.Int).SetUint64(^uint64(0))
		return big.NewInt(0), max
	default:
		return nil, nil
	}
}

// toBigInt converts a supported Go integer value (or *big.Int) to a
// *big.Int for range checking and two's-complement encoding.
func toBigInt(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	default:
		return nil, fmt.Errorf("%w: %T is not an integer", ErrUnsupportedValue, v)
	}
}

// EncodeFixedInt encodes v as a size-byte little-endian two's-complement
// (or unsigned) fixed integer, per spec.md §4.2.
func EncodeFixedInt(v interface{}, t types.CommonType) ([]byte, error) {
	size, err := FixedIntSize(t)
	if err != nil {
		return nil, err
	}
	bi, err := toBigInt(v)
	if err != nil {
		return nil, err
	}
	min, max := fixedIntBounds(t)
	if bi.Cmp(min) < 0 || bi.Cmp(max) > 0 {
		return nil, fmt.Errorf("%w: %s value %s outside [%s, %s]", ErrIntegerOutOfRange, t, bi, min, max)
	}
	return encodeTwosComplement(bi, size), nil
}

// DecodeFixedInt decodes a size-byte little-endian fixed integer.
func DecodeFixedInt(b []byte, t types.CommonType) (*big.Int, error) {
	size, err := FixedIntSize(t)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrLengthMismatch, t, size, len(b))
	}
	return decodeTwosComplement(b, types.IsSignedFixedInt(t)), nil
}

// EncodeVarInt encodes an arbitrary-precision integer as `width` bytes
// of little-endian two's complement, where width is chosen by the
// caller (variable-integer framing is owned by the container, e.g. the
// rational term-size prefix — spec.md §4.2).
func EncodeVarInt(v interface{}, signed bool, width int) ([]byte, error) {
	bi, err := toBigInt(v)
	if err != nil {
		return nil, err
	}
	if !signed && bi.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value for unsigned term", ErrIntegerOutOfRange)
	}
	if fits, lo, hi := fitsInWidth(bi, signed, width); !fits {
		return nil, fmt.Errorf("%w: value %s outside %d-byte range [%s, %s]", ErrIntegerOutOfRange, bi, width, lo, hi)
	}
	return encodeTwosComplement(bi, width), nil
}

// DecodeVarInt decodes width bytes of little-endian two's complement.
func DecodeVarInt(b []byte, signed bool) (*big.Int, error) {
	return decodeTwosComplement(b, signed), nil
}

// MinWidthFor returns the minimum number of bytes, rounded up to the
// next multiple of minGranularity, needed to hold bi under the given
// signedness.
func MinWidthFor(bi *big.Int, signed bool, minGranularity int) int {
	width := minGranularity
	for {
		if fits, _, _ := fitsInWidth(bi, signed, width); fits {
			return width
		}
		width += minGranularity
	}
}

func fitsInWidth(bi *big.Int, signed bool, width int) (bool, *big.Int, *big.Int) {
	bits := uint(width * 8)
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

// encodeTwosComplement renders bi as `size` little-endian bytes, two's
// complement for negative values.
func encodeTwosComplement(bi *big.Int, size int) []byte {
	out := make([]byte, size)
	if bi.Sign() >= 0 {
		b := bi.Bytes() // big-endian, minimal
		for i := 0; i < len(b) && i < size; i++ {
			out[i] = b[len(b)-1-i]
		}
		return out
	}

	// Two's complement of a negative number: (1<<bits) + bi.
	mod := new(big.Int).Lsh(big.NewInt(1), uint(size*8))
	twos := new(big.Int).Add(mod, bi)
	b := twos.Bytes()
	for i := 0; i < len(b) && i < size; i++ {
		out[i] = b[len(b)-1-i]
	}
	return out
}

// decodeTwosComplement reads little-endian bytes as a two's-complement
// (or unsigned) integer.
func decodeTwosComplement(b []byte, signed bool) *big.Int {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	v := new(big.Int).SetBytes(be)
	if signed && len(b) > 0 && be[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, mod)
	}
	return v
}
