// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/umb/types"
)

// TestPackStructBitOrderMatchesReference pins the exact cross-field bit
// order spec.md §4.3 requires: the first-packed field's bits land in
// the low-order bits of the byte stream, matching
// original_source/umbi/binary/structs.py's StructPacker. Field A (3
// bits, value 5 = 0b101) packed before field B (5 bits, value 13 =
// 0b01101) must produce the single byte 0x6D, not 0xAD.
func TestPackStructBitOrderMatchesReference(t *testing.T) {
	st, err := types.NewStructType(8, []types.Field{
		types.Attribute{Name: "a", Type: types.Uint, Size: 3},
		types.Attribute{Name: "b", Type: types.Uint, Size: 5},
	})
	require.NoError(t, err)

	out, err := PackStruct(st, types.StructValue{"a": 5, "b": 13})
	require.NoError(t, err)
	require.Equal(t, []byte{0x6D}, out)

	got, err := UnpackStruct(st, out)
	require.NoError(t, err)
	require.Equal(t, uint64(5), mustUint64(t, got["a"]))
	require.Equal(t, uint64(13), mustUint64(t, got["b"]))
}

func TestPackStructRoundTripAcrossByteBoundary(t *testing.T) {
	st, err := types.NewStructType(8, []types.Field{
		types.Attribute{Name: "a", Type: types.Uint, Size: 3},
		types.Attribute{Name: "b", Type: types.Uint, Size: 3},
		types.Attribute{Name: "c", Type: types.Uint, Size: 3},
		types.Padding{Bits: 7},
	})
	require.NoError(t, err)

	record := types.StructValue{"a": 5, "b": 2, "c": 7}
	out, err := PackStruct(st, record)
	require.NoError(t, err)
	require.Len(t, out, 2)

	got, err := UnpackStruct(st, out)
	require.NoError(t, err)
	require.Equal(t, uint64(5), mustUint64(t, got["a"]))
	require.Equal(t, uint64(2), mustUint64(t, got["b"]))
	require.Equal(t, uint64(7), mustUint64(t, got["c"]))
}

func mustUint64(t *testing.T, v interface{}) uint64 {
	t.Helper()
	bi, ok := v.(interface{ Uint64() uint64 })
	require.True(t, ok, "expected a *big.Int-like value, got %T", v)
	return bi.Uint64()
}
