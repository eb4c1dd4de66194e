// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types implements the UMB value-type lattice: the closed
// enumeration of common types, the Interval and struct-type shapes, and
// the promotion rules between numeric kinds.
package types

import "errors"

// CommonType is one tag of the closed value-type enumeration.
type CommonType string

// The closed set of common types.
const (
	Bool   CommonType = "bool"
	Bytes  CommonType = "bytes"
	String CommonType = "string"
	JSON   CommonType = "json"

	Int16  CommonType = "int16"
	Uint16 CommonType = "uint16"
	Int32  CommonType = "int32"
	Uint32 CommonType = "uint32"
	Int64  CommonType = "int64"
	Uint64 CommonType = "uint64"

	Int  CommonType = "int"
	Uint CommonType = "uint"

	Double CommonType = "double"

	Rational CommonType = "rational"

	DoubleInterval   CommonType = "double-interval"
	RationalInterval CommonType = "rational-interval"

	Struct CommonType = "struct"
)

// Sentinel error kinds, named after the taxonomy in spec.md §4.1/§7.
var (
	ErrUnsupportedType        = errors.New("unsupported type")
	ErrEmptyTypeSet           = errors.New("empty type set")
	ErrNonNumericInNumericSet = errors.New("non-numeric value in numeric set")
	ErrCannotPromote          = errors.New("cannot promote to target type")
)

// IsFixedInt reports whether t is one of the fixed-width integer tags.
func IsFixedInt(t CommonType) bool {
	switch t {
	case Int16, Uint16, Int32, Uint32, Int64, Uint64:
		return true
	default:
		return false
	}
}

// IsSignedFixedInt reports whether t is a signed fixed-width integer tag.
func IsSignedFixedInt(t CommonType) bool {
	switch t {
	case Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsVariableInt reports whether t is an arbitrary-precision integer tag.
func IsVariableInt(t CommonType) bool {
	return t == Int || t == Uint
}

// IsInt reports whether t is any integer-tagged type, fixed or variable.
func IsInt(t CommonType) bool {
	return IsFixedInt(t) || IsVariableInt(t)
}

// IsInterval reports whether t is one of the two interval tags.
func IsInterval(t CommonType) bool {
	return t == DoubleInterval || t == RationalInterval
}

// IsNumeric reports whether t participates in the promotion lattice.
func IsNumeric(t CommonType) bool {
	return IsInt(t) || t == Double || t == Rational || IsInterval(t)
}
