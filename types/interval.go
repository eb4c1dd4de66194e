// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"fmt"
	"math/big"
)

// Interval is a closed interval [Left, Right] over a double or rational
// base, with Left <= Right under the natural order of that base.
//
// Exactly one of the Double-tagged or Rational-tagged fields is
// meaningful, selected by Base.
type Interval struct {
	Base          CommonType // Double or Rational
	DLeft, DRight float64
	RLeft, RRight *big.Rat
}

// NewDoubleInterval builds a validated double interval.
func NewDoubleInterval(left, right float64) (Interval, error) {
	if left > right {
		return Interval{}, fmt.Errorf("double-interval: left %v > right %v", left, right)
	}
	return Interval{Base: Double, DLeft: left, DRight: right}, nil
}

// NewRationalInterval builds a validated rational interval.
func NewRationalInterval(left, right *big.Rat) (Interval, error) {
	if left.Cmp(right) > 0 {
		return Interval{}, fmt.Errorf("rational-interval: left %v > right %v", left, right)
	}
	return Interval{Base: Rational, RLeft: new(big.Rat).Set(left), RRight: new(big.Rat).Set(right)}, nil
}

// Tag returns the interval's common type tag.
func (iv Interval) Tag() CommonType {
	switch iv.Base {
	case Rational:
		return RationalInterval
	default:
		return DoubleInterval
	}
}

// Contains reports whether v lies within the closed interval.
func (iv Interval) Contains(v interface{}) (bool, error) {
	switch iv.Base {
	case Double:
		f, ok := asFloat(v)
		if !ok {
			return false, fmt.Errorf("%w: value is not numeric", ErrUnsupportedType)
		}
		return f >= iv.DLeft && f <= iv.DRight, nil
	case Rational:
		r, ok := asRat(v)
		if !ok {
			return false, fmt.Errorf("%w: value is not numeric", ErrUnsupportedType)
		}
		return r.Cmp(iv.RLeft) >= 0 && r.Cmp(iv.RRight) <= 0, nil
	default:
		return false, fmt.Errorf("%w: interval has no base", ErrUnsupportedType)
	}
}

// Equal reports structural equality between two intervals.
func (iv Interval) Equal(other Interval) bool {
	if iv.Base != other.Base {
		return false
	}
	switch iv.Base {
	case Double:
		return iv.DLeft == other.DLeft && iv.DRight == other.DRight
	case Rational:
		return iv.RLeft.Cmp(other.RLeft) == 0 && iv.RRight.Cmp(other.RRight) == 0
	default:
		return true
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case *big.Int:
		f := new(big.Float).SetInt(n)
		out, _ := f.Float64()
		return out, true
	}
	return 0, false
}

func asRat(v interface{}) (*big.Rat, bool) {
	switch n := v.(type) {
	case *big.Rat:
		return n, true
	case *big.Int:
		return new(big.Rat).SetInt(n), true
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	}
	return nil, false
}
