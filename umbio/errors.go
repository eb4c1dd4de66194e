// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package umbio

import "errors"

// Sentinel error kinds, named after the *SchemaViolation* and
// *UnknownMember* rows of spec.md §7.
var (
	// ErrMissingFile is returned when a member the manifest declares as
	// present (directly, or implied by a non-nil *-type field) cannot be
	// found in the archive, and when an annotation lists applies-to
	// targets but declares no type. This is always fatal.
	ErrMissingFile = errors.New("required archive member missing")

	// ErrUnexpectedCsr is returned when a chunk-CSR member is present for
	// a fixed-width declared type that should never need one.
	ErrUnexpectedCsr = errors.New("unexpected chunk-CSR member for fixed-width type")

	// ErrUnknownEntityCount is returned when an annotation's applies-to
	// target cannot be resolved against the transition-system counts.
	ErrUnknownEntityCount = errors.New("unknown entity count for applies-to target")
)
