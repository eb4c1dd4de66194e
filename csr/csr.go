// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package csr implements the Compressed-Sparse-Row ↔ half-open-ranges
// conversions and invariants of spec.md §4.5. CSR is the single
// indirection idiom the rest of the codec uses for every variable-length
// axis: state→choice, choice→branch, vector chunk offsets, and struct
// payload offsets.
package csr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	ErrInvalidCsr    = errors.New("invalid CSR vector")
	ErrInvalidRanges = errors.New("invalid ranges vector")
)

// Range is a half-open interval [Start, End).
type Range struct {
	Start, End uint64
}

// ValidateCsr checks that c is a non-decreasing integer array with
// |c| >= 2 and c[0] == 0 (spec.md §4.5).
func ValidateCsr(c []uint64) error {
	if len(c) < 2 {
		return fmt.Errorf("%w: length %d < 2", ErrInvalidCsr, len(c))
	}
	if c[0] != 0 {
		return fmt.Errorf("%w: c[0] = %d, want 0", ErrInvalidCsr, c[0])
	}
	for i := 1; i < len(c); i++ {
		if c[i] < c[i-1] {
			return fmt.Errorf("%w: not monotone at index %d (%d < %d)", ErrInvalidCsr, i, c[i], c[i-1])
		}
	}
	return nil
}

// ValidateRanges checks that rs is a sequence of half-open ranges with
// start_i <= end_i and end_i == start_{i+1}.
func ValidateRanges(rs []Range) error {
	for i, r := range rs {
		if r.Start > r.End {
			return fmt.Errorf("%w: range %d has start %d > end %d", ErrInvalidRanges, i, r.Start, r.End)
		}
		if i > 0 && rs[i-1].End != r.Start {
			return fmt.Errorf("%w: range %d starts at %d, want %d", ErrInvalidRanges, i, r.Start, rs[i-1].End)
		}
	}
	return nil
}

// CsrToRanges converts a validated CSR vector to its ranges form.
func CsrToRanges(c []uint64) ([]Range, error) {
	if err := ValidateCsr(c); err != nil {
		return nil, err
	}
	rs := make([]Range, len(c)-1)
	for i := range rs {
		rs[i] = Range{Start: c[i], End: c[i+1]}
	}
	return rs, nil
}

// RangesToCsr converts a validated ranges vector to its CSR form.
func RangesToCsr(rs []Range) ([]uint64, error) {
	if err := ValidateRanges(rs); err != nil {
		return nil, err
	}
	c := make([]uint64, len(rs)+1)
	if len(rs) > 0 {
		c[0] = rs[0].Start
	}
	for i, r := range rs {
		c[i+1] = r.End
	}
	if c[0] != 0 {
		return nil, fmt.Errorf("%w: ranges do not start at 0", ErrInvalidRanges)
	}
	return c, nil
}

// Len returns the number of ranges/entities described by a CSR vector.
func Len(c []uint64) int {
	if len(c) == 0 {
		return 0
	}
	return len(c) - 1
}

// RangeAt returns the i'th half-open range directly from a CSR vector
// without materializing the whole ranges slice, used by hot accessors
// like (*ats.ATS).ChoiceRange.
func RangeAt(c []uint64, i int) (Range, error) {
	if i < 0 || i+1 >= len(c) {
		return Range{}, fmt.Errorf("%w: index %d out of bounds for CSR of length %d", ErrInvalidCsr, i, len(c))
	}
	return Range{Start: c[i], End: c[i+1]}, nil
}
