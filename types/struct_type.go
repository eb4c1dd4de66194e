// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "fmt"

// Field is one element of a StructType's declaration order: either a
// Padding or an Attribute.
type Field interface {
	isField()
}

// Padding reserves Bits zero bits in the packed bit buffer.
type Padding struct {
	Bits uint
}

func (Padding) isField() {}

// Attribute is one named, typed struct member. Type must be one of
// Bool, Int, Uint, Double, Rational, or String.
//
// For fixed-size-in-bits types (Bool, Int, Uint, Double), Size is
// mandatory and positive; Double requires Size == 64. For variable-size
// types (String, Rational), Size is zero and the field is placed at a
// byte-aligned offset.
type Attribute struct {
	Name   string
	Type   CommonType
	Size   uint // bits, for fixed-size types only
	Lower  *float64
	Upper  *float64
	Offset uint // informational; byte offset within the packed record
}

func (Attribute) isField() {}

// StructType describes a bit-packed struct layout.
type StructType struct {
	// Alignment, in bits, used to fold the per-item byte offset table
	// (the struct CSR) into a smaller count: chunk offsets are divided
	// by Alignment on encode and re-multiplied on decode.
	Alignment uint
	Fields    []Field
}

// NewStructType validates and returns a StructType.
func NewStructType(alignment uint, fields []Field) (*StructType, error) {
	if alignment == 0 {
		alignment = 1
	}
	st := &StructType{Alignment: alignment, Fields: fields}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// Validate checks the struct-type-level invariants of spec.md §3.3.
func (st *StructType) Validate() error {
	for i, f := range st.Fields {
		switch v := f.(type) {
		case Padding:
			if v.Bits == 0 {
				return fmt.Errorf("%w: field %d: padding must have positive bits", ErrUnsupportedType, i)
			}
		case Attribute:
			switch v.Type {
			case Bool, Int, Uint, Double:
				if v.Size == 0 {
					return fmt.Errorf("%w: field %d (%s): fixed-size attribute requires positive size", ErrUnsupportedType, i, v.Name)
				}
				if v.Type == Double && v.Size != 64 {
					return fmt.Errorf("%w: field %d (%s): double size must be 64", ErrUnsupportedType, i, v.Name)
				}
			case String, Rational:
				if v.Size != 0 {
					return fmt.Errorf("%w: field %d (%s): variable-size attribute must not declare size", ErrUnsupportedType, i, v.Name)
				}
			default:
				return fmt.Errorf("%w: field %d (%s): attribute type %s not allowed in struct", ErrUnsupportedType, i, v.Name, v.Type)
			}
		default:
			return fmt.Errorf("%w: field %d: unknown field kind", ErrUnsupportedType, i)
		}
	}
	return nil
}

// HasVariableSize reports whether any attribute in st is a variable-size
// type (String or Rational), which forces byte-aligned placement and a
// chunk CSR at the vector layer.
func (st *StructType) HasVariableSize() bool {
	for _, f := range st.Fields {
		if a, ok := f.(Attribute); ok && (a.Type == String || a.Type == Rational) {
			return true
		}
	}
	return false
}

// AttributeNames returns the names of the struct's Attribute fields, in
// declaration order (Padding fields are skipped).
func (st *StructType) AttributeNames() []string {
	names := make([]string, 0, len(st.Fields))
	for _, f := range st.Fields {
		if a, ok := f.(Attribute); ok {
			names = append(names, a.Name)
		}
	}
	return names
}

// StructValue is a conforming record: a map from attribute name to the
// value (of a Go type matching the attribute's declared CommonType).
type StructValue map[string]interface{}
