// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/luxfi/umb/types"
)

// EncodeDoubleInterval renders a double-interval as 16 fixed bytes:
// Left then Right, each an IEEE-754 binary64 (spec.md §4.2).
func EncodeDoubleInterval(iv types.Interval) ([]byte, error) {
	if iv.Base != types.Double {
		return nil, fmt.Errorf("%w: interval base is not double", ErrSizeTypeMismatch)
	}
	out := make([]byte, 0, 16)
	out = append(out, EncodeDouble(iv.DLeft)...)
	out = append(out, EncodeDouble(iv.DRight)...)
	return out, nil
}

// DecodeDoubleInterval parses 16 bytes as a double-interval.
func DecodeDoubleInterval(b []byte) (types.Interval, error) {
	if len(b) != 16 {
		return types.Interval{}, fmt.Errorf("%w: double-interval expects 16 bytes, got %d", ErrLengthMismatch, len(b))
	}
	left, err := DecodeDouble(b[:8])
	if err != nil {
		return types.Interval{}, err
	}
	right, err := DecodeDouble(b[8:])
	if err != nil {
		return types.Interval{}, err
	}
	return types.NewDoubleInterval(left, right)
}

// rationalIntervalTermSize returns the common term size for a
// rational-interval: the maximum of the two ends' own minimal widths
// (spec.md §4.2, "for rationals, the common term_size is the maximum
// of the two ends").
func rationalIntervalTermSize(iv types.Interval) int {
	lw := RationalTermSize(iv.RLeft.Num(), iv.RLeft.Denom())
	rw := RationalTermSize(iv.RRight.Num(), iv.RRight.Denom())
	if rw > lw {
		return rw
	}
	return lw
}

// EncodeRationalIntervalTerms renders a rational-interval's two ends at
// a shared termSize, with no outer framing.
func EncodeRationalIntervalTerms(iv types.Interval, termSize int) ([]byte, error) {
	if iv.Base != types.Rational {
		return nil, fmt.Errorf("%w: interval base is not rational", ErrSizeTypeMismatch)
	}
	left, err := EncodeRationalTerms(iv.RLeft, termSize)
	if err != nil {
		return nil, fmt.Errorf("interval left: %w", err)
	}
	right, err := EncodeRationalTerms(iv.RRight, termSize)
	if err != nil {
		return nil, fmt.Errorf("interval right: %w", err)
	}
	return append(left, right...), nil
}

// DecodeRationalIntervalTerms parses a 4*termSize-byte buffer as a
// rational-interval.
func DecodeRationalIntervalTerms(b []byte, termSize int) (types.Interval, error) {
	if len(b) != 4*termSize {
		return types.Interval{}, fmt.Errorf("%w: rational-interval expects %d bytes, got %d", ErrLengthMismatch, 4*termSize, len(b))
	}
	left, err := DecodeRationalTerms(b[:2*termSize], termSize)
	if err != nil {
		return types.Interval{}, err
	}
	right, err := DecodeRationalTerms(b[2*termSize:], termSize)
	if err != nil {
		return types.Interval{}, err
	}
	return types.NewRationalInterval(left, right)
}

// EncodeFramedRationalInterval frames a standalone rational-interval
// with a uint16 term-size prefix followed by the four equal-sized
// words (left numerator, left denominator, right numerator, right
// denominator).
func EncodeFramedRationalInterval(iv types.Interval) ([]byte, error) {
	termSize := rationalIntervalTermSize(iv)
	if termSize > maxFramedLength {
		return nil, fmt.Errorf("%w: rational-interval term size %d exceeds uint16 frame", ErrLengthMismatch, termSize)
	}
	body, err := EncodeRationalIntervalTerms(iv, termSize)
	if err != nil {
		return nil, err
	}
	w := NewWriter(2 + len(body))
	w.PackUint16(uint16(termSize))
	w.PackBytes(body)
	return w.Bytes, w.Err
}

// DecodeFramedRationalInterval reads a uint16-prefixed rational
// interval, returning it and the number of bytes consumed.
func DecodeFramedRationalInterval(b []byte) (types.Interval, int, error) {
	r := NewReader(b)
	termSize := int(r.UnpackUint16())
	body := r.UnpackBytes(4 * termSize)
	if r.Err != nil {
		return types.Interval{}, 0, r.Err
	}
	iv, err := DecodeRationalIntervalTerms(body, termSize)
	if err != nil {
		return types.Interval{}, 0, err
	}
	return iv, r.Pos, nil
}
