// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vector

import (
	"fmt"

	"github.com/luxfi/umb/codec"
	"github.com/luxfi/umb/csr"
	"github.com/luxfi/umb/types"
)

// EncodeStruct renders a homogeneous sequence of struct records under
// st's layout. When st has no variable-size attribute, every record
// packs to the same byte length and no CSR is emitted. Otherwise a
// chunk CSR is emitted with its offsets divided by st.Alignment, per
// spec.md §4.4 ("the emitted CSR is divided by a; the reader
// re-multiplies").
func EncodeStruct(values []types.StructValue, st *types.StructType) ([]byte, []uint64, error) {
	if len(values) == 0 {
		return []byte{}, nil, nil
	}

	packed := make([][]byte, len(values))
	for i, rec := range values {
		b, err := codec.PackStruct(st, rec)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		packed[i] = b
	}

	if !st.HasVariableSize() {
		out := make([]byte, 0, len(packed[0])*len(packed))
		for i, b := range packed {
			if len(b) != len(packed[0]) {
				return nil, nil, fmt.Errorf("record %d: %w: fixed struct produced %d bytes, want %d", i, ErrChunkSizeMismatch, len(b), len(packed[0]))
			}
			out = append(out, b...)
		}
		return out, nil, nil
	}

	out := make([]byte, 0)
	chunkCsr := make([]uint64, len(values)+1)
	for i, b := range packed {
		if len(b)%int(st.Alignment) != 0 {
			return nil, nil, fmt.Errorf("record %d: %w: length %d bytes not a multiple of alignment %d", i, ErrChunkSizeMismatch, len(b), st.Alignment)
		}
		out = append(out, b...)
		chunkCsr[i+1] = chunkCsr[i] + uint64(len(b))/uint64(st.Alignment)
	}
	return out, chunkCsr, nil
}

// DecodeStruct is the inverse of EncodeStruct.
func DecodeStruct(payload []byte, chunkCsr []uint64, n int, st *types.StructType) ([]types.StructValue, error) {
	if n == 0 {
		return []types.StructValue{}, nil
	}

	if !st.HasVariableSize() {
		if len(payload)%n != 0 {
			return nil, fmt.Errorf("%w: payload of %d bytes does not divide evenly into %d records", ErrChunkSizeMismatch, len(payload), n)
		}
		size := len(payload) / n
		out := make([]types.StructValue, n)
		for i := 0; i < n; i++ {
			rec, err := codec.UnpackStruct(st, payload[i*size:(i+1)*size])
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			out[i] = rec
		}
		return out, nil
	}

	if chunkCsr == nil {
		return nil, ErrCsrMissing
	}
	if err := csr.ValidateCsr(chunkCsr); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCsrInconsistent, err)
	}
	if csr.Len(chunkCsr) != n {
		return nil, fmt.Errorf("%w: CSR describes %d elements, expected %d", ErrCsrInconsistent, csr.Len(chunkCsr), n)
	}

	out := make([]types.StructValue, n)
	for i := 0; i < n; i++ {
		start := chunkCsr[i] * uint64(st.Alignment)
		end := chunkCsr[i+1] * uint64(st.Alignment)
		if end > uint64(len(payload)) {
			return nil, fmt.Errorf("%w: record %d byte range [%d, %d) exceeds payload length %d", ErrCsrInconsistent, i, start, end, len(payload))
		}
		rec, err := codec.UnpackStruct(st, payload[start:end])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}
