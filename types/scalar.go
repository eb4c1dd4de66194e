// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// TagOf returns the common type of a runtime value, per spec.md §4.1.
// Any Go integer kind tags as Int; any float kind tags as Double; a
// *big.Rat tags as Rational; an Interval inspects its own Base.
func TagOf(v interface{}) (CommonType, error) {
	switch val := v.(type) {
	case bool:
		return Bool, nil
	case []byte:
		return Bytes, nil
	case string:
		return String, nil
	case json.RawMessage:
		return JSON, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, *big.Int:
		return Int, nil
	case float32, float64:
		return Double, nil
	case *big.Rat:
		return Rational, nil
	case Interval:
		return val.Tag(), nil
	case *StructType:
		return Struct, nil
	case StructValue:
		return Struct, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// Fits is a cheap structural check: does v's runtime shape conform to
// the declared type t? Range checks are deferred to the encoder, per
// spec.md §4.1 and §3.1 ("Integers are accepted as instances of any
// integer-tagged type").
func Fits(v interface{}, t CommonType) (bool, error) {
	tag, err := TagOf(v)
	if err != nil {
		return false, err
	}

	if tag == Int && IsInt(t) {
		return true, nil
	}
	if tag == Int && (t == Double || t == Rational) {
		return true, nil
	}
	if tag == Double && t == Double {
		return true, nil
	}
	if tag == Rational && t == Rational {
		return true, nil
	}
	if (tag == Int || tag == Double) && t == DoubleInterval {
		return true, nil
	}
	if (tag == Int || tag == Rational) && t == RationalInterval {
		return true, nil
	}
	if IsInterval(tag) && tag == t {
		return true, nil
	}
	return tag == t, nil
}
