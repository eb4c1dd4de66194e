// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"
	"math/big"
)

// minTermGranularity is the byte granularity term sizes are rounded up
// to: "the minimum multiple of 8 [bytes] that fits both", spec.md §4.2.
const minTermGranularity = 8

// RationalTermSize returns the minimum multiple of minTermGranularity
// bytes wide enough to hold both num (signed) and den (unsigned;
// big.Rat always normalizes Denom() to be positive).
func RationalTermSize(num, den *big.Int) int {
	w := MinWidthFor(num, true, minTermGranularity)
	if d := MinWidthFor(den, false, minTermGranularity); d > w {
		w = d
	}
	return w
}

// EncodeRationalTerms encodes r's numerator and denominator as two
// equal-sized termSize-byte words (signed numerator, unsigned
// denominator), with no framing.
func EncodeRationalTerms(r *big.Rat, termSize int) ([]byte, error) {
	num, den := r.Num(), r.Denom()
	numBytes, err := EncodeVarInt(num, true, termSize)
	if err != nil {
		return nil, fmt.Errorf("rational numerator: %w", err)
	}
	denBytes, err := EncodeVarInt(den, false, termSize)
	if err != nil {
		return nil, fmt.Errorf("rational denominator: %w", err)
	}
	out := make([]byte, 0, 2*termSize)
	out = append(out, numBytes...)
	out = append(out, denBytes...)
	return out, nil
}

// DecodeRationalTerms decodes a 2*termSize-byte buffer as a rational.
func DecodeRationalTerms(b []byte, termSize int) (*big.Rat, error) {
	if len(b) != 2*termSize {
		return nil, fmt.Errorf("%w: rational expects %d bytes, got %d", ErrLengthMismatch, 2*termSize, len(b))
	}
	num, err := DecodeVarInt(b[:termSize], true)
	if err != nil {
		return nil, err
	}
	den, err := DecodeVarInt(b[termSize:], false)
	if err != nil {
		return nil, err
	}
	if den.Sign() == 0 {
		return nil, fmt.Errorf("%w: rational denominator is zero", ErrUnsupportedValue)
	}
	return new(big.Rat).SetFrac(num, den), nil
}

// EncodeFramedRational frames a standalone rational with a uint16
// term-size-in-bytes prefix followed by the two equal-sized words,
// choosing the minimal term size automatically (spec.md §4.2, §6).
func EncodeFramedRational(r *big.Rat) ([]byte, error) {
	termSize := RationalTermSize(r.Num(), r.Denom())
	if termSize > maxFramedLength {
		return nil, fmt.Errorf("%w: rational term size %d exceeds uint16 frame", ErrLengthMismatch, termSize)
	}
	body, err := EncodeRationalTerms(r, termSize)
	if err != nil {
		return nil, err
	}
	w := NewWriter(2 + len(body))
	w.PackUint16(uint16(termSize))
	w.PackBytes(body)
	return w.Bytes, w.Err
}

// DecodeFramedRational reads a uint16-prefixed rational, returning it
// and the number of bytes consumed.
func DecodeFramedRational(b []byte) (*big.Rat, int, error) {
	r := NewReader(b)
	termSize := int(r.UnpackUint16())
	body := r.UnpackBytes(2 * termSize)
	if r.Err != nil {
		return nil, 0, r.Err
	}
	rat, err := DecodeRationalTerms(body, termSize)
	if err != nil {
		return nil, 0, err
	}
	return rat, r.Pos, nil
}
