// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"fmt"
	"math/big"
)

// CommonNumeric computes the common type of a non-empty set of tags per
// the promotion lattice of spec.md §3.1:
//
//	int <= double <= double-interval
//	int <= rational <= rational-interval
//
// Any set containing both a rational-branch tag (rational or
// rational-interval) and an interval tag promotes to rational-interval.
// A non-numeric mixed set containing string promotes to string.
// Singleton sets yield themselves.
func CommonNumeric(tags []CommonType) (CommonType, error) {
	if len(tags) == 0 {
		return "", ErrEmptyTypeSet
	}

	unique := map[CommonType]bool{}
	for _, t := range tags {
		unique[t] = true
	}
	if len(unique) == 1 {
		for t := range unique {
			return t, nil
		}
	}

	if unique[String] {
		return String, nil
	}

	for t := range unique {
		if !IsNumeric(t) {
			return "", fmt.Errorf("%w: %s", ErrNonNumericInNumericSet, t)
		}
	}

	hasRationalBranch := false
	hasDoubleBranch := false
	hasInterval := false
	for t := range unique {
		switch {
		case t == Rational || t == RationalInterval:
			hasRationalBranch = true
		case t == Double || t == DoubleInterval:
			hasDoubleBranch = true
		}
		if IsInterval(t) {
			hasInterval = true
		}
	}

	switch {
	case hasRationalBranch && hasInterval:
		return RationalInterval, nil
	case hasRationalBranch && hasDoubleBranch:
		return "", fmt.Errorf("%w: rational and double branches cannot mix", ErrCannotPromote)
	case hasRationalBranch:
		return Rational, nil
	case hasDoubleBranch && hasInterval:
		return DoubleInterval, nil
	case hasDoubleBranch:
		return Double, nil
	default:
		// All ints (possibly mixed fixed widths): common type is the
		// widest int tag present, or Int if variable-width ints appear.
		return widestInt(unique), nil
	}
}

func widestInt(unique map[CommonType]bool) CommonType {
	if unique[Int] || unique[Uint] {
		return Int
	}
	order := []CommonType{Int64, Uint64, Int32, Uint32, Int16, Uint16}
	for _, t := range order {
		if unique[t] {
			return t
		}
	}
	return Int
}

// Promote converts v to a value of the target numeric/interval type.
// Widening int -> any numeric is exact. int -> double uses the nearest
// float64. float -> rational uses the exact IEEE binary fraction (see
// SPEC_FULL.md / DESIGN.md for the pinned semantics).
func Promote(v interface{}, target CommonType) (interface{}, error) {
	srcTag, err := TagOf(v)
	if err != nil {
		return nil, err
	}
	if srcTag == target {
		return v, nil
	}

	switch target {
	case Double:
		switch srcTag {
		case Int:
			return toBigInt(v).intoFloat(), nil
		case Double:
			return v, nil
		}
	case Rational:
		switch srcTag {
		case Int:
			return new(big.Rat).SetInt(toBigInt(v).Int), nil
		case Double:
			f, _ := asFloat(v)
			r := new(big.Rat)
			if r.SetFloat64(f) == nil {
				return nil, fmt.Errorf("%w: %v is not a finite double", ErrCannotPromote, f)
			}
			return r, nil
		case Rational:
			return v, nil
		}
	case DoubleInterval:
		switch srcTag {
		case Int, Double:
			f, _ := asFloat(v)
			iv, err := NewDoubleInterval(f, f)
			return iv, err
		case DoubleInterval:
			return v, nil
		}
	case RationalInterval:
		switch srcTag {
		case Int, Rational:
			r, _ := asRat(v)
			iv, err := NewRationalInterval(r, r)
			return iv, err
		case RationalInterval:
			return v, nil
		case Double:
			// double -> rational-interval: promote through rational first.
			rv, err := Promote(v, Rational)
			if err != nil {
				return nil, err
			}
			return Promote(rv, RationalInterval)
		case DoubleInterval:
			dv := v.(Interval)
			left, _ := Promote(dv.DLeft, Rational)
			right, _ := Promote(dv.DRight, Rational)
			return NewRationalInterval(left.(*big.Rat), right.(*big.Rat))
		}
	default:
		if IsInt(target) {
			if srcTag != Int {
				break
			}
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: %s -> %s", ErrCannotPromote, srcTag, target)
}

// PromoteVector promotes a homogeneous sequence of values to their
// common numeric/interval type, returning the target type and the
// promoted slice.
func PromoteVector(vec []interface{}) (CommonType, []interface{}, error) {
	tags := make([]CommonType, len(vec))
	for i, v := range vec {
		t, err := TagOf(v)
		if err != nil {
			return "", nil, err
		}
		tags[i] = t
	}
	target, err := CommonNumeric(tags)
	if err != nil {
		return "", nil, err
	}
	out := make([]interface{}, len(vec))
	for i, v := range vec {
		pv, err := Promote(v, target)
		if err != nil {
			return "", nil, err
		}
		out[i] = pv
	}
	return target, out, nil
}

type bigIntWrap struct{ *big.Int }

func (b bigIntWrap) intoFloat() float64 {
	f := new(big.Float).SetInt(b.Int)
	out, _ := f.Float64()
	return out
}

func toBigInt(v interface{}) bigIntWrap {
	switch n := v.(type) {
	case *big.Int:
		return bigIntWrap{n}
	case int:
		return bigIntWrap{big.NewInt(int64(n))}
	case int8:
		return bigIntWrap{big.NewInt(int64(n))}
	case int16:
		return bigIntWrap{big.NewInt(int64(n))}
	case int32:
		return bigIntWrap{big.NewInt(int64(n))}
	case int64:
		return bigIntWrap{big.NewInt(n)}
	case uint:
		return bigIntWrap{new(big.Int).SetUint64(uint64(n))}
	case uint8:
		return bigIntWrap{new(big.Int).SetUint64(uint64(n))}
	case uint16:
		return bigIntWrap{new(big.Int).SetUint64(uint64(n))}
	case uint32:
		return bigIntWrap{new(big.Int).SetUint64(uint64(n))}
	case uint64:
		return bigIntWrap{new(big.Int).SetUint64(n)}
	default:
		return bigIntWrap{big.NewInt(0)}
	}
}
