// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "fmt"

// EncodeBitvector packs n bits into ceil(n/8) bytes, LSB of each byte
// holding the lower-indexed bit, per spec.md §4.2.
func EncodeBitvector(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// DecodeBitvector unpacks a byte slice into a bit-per-bool slice of
// length len(b)*8 (a multiple of 8). Callers that need exactly n bits
// must call TruncateBits(decoded, n) themselves (spec.md §4.2).
func DecodeBitvector(b []byte) []bool {
	out := make([]bool, len(b)*8)
	for i := range out {
		out[i] = b[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

// TruncateBits truncates a decoded bitvector to exactly n bits,
// validating that the discarded tail (padding) is all zero.
func TruncateBits(bits []bool, n int) ([]bool, error) {
	if n > len(bits) {
		return nil, fmt.Errorf("%w: requested %d bits, have %d", ErrLengthMismatch, n, len(bits))
	}
	for i := n; i < len(bits); i++ {
		if bits[i] {
			return nil, fmt.Errorf("%w: non-zero padding bit at index %d", ErrLengthMismatch, i)
		}
	}
	return bits[:n], nil
}

// EncodeBool renders a standalone boolean scalar as a single byte.
func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// DecodeBool parses a single-byte boolean scalar.
func DecodeBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, fmt.Errorf("%w: bool expects 1 byte, got %d", ErrLengthMismatch, len(b))
	}
	return b[0] != 0, nil
}

// bitBuffer is an MSB-first bit accumulator private to the struct codec
// (spec.md §4.3, mirroring the reference StructPacker/StructUnpacker's
// BitArray buffer in original_source/umbi/binary/structs.py): a
// field's bits are prepended to the MSB side of the buffer as they
// arrive, and whole bytes are drained from the LSB side (the tail) as
// soon as 8 bits accumulate, which keeps the first-packed field's bits
// in the low-order positions of the output stream.
type bitBuffer struct {
	bits []bool // MSB-first within the buffer; bits[0] is the current MSB
}

// pushBits prepends the low `n` bits of v, MSB first, to the MSB side
// of the buffer (buffer = bits + buffer, as in append_to_buffer).
func (bb *bitBuffer) pushBits(v uint64, n uint) {
	newBits := make([]bool, n)
	for i := uint(0); i < n; i++ {
		newBits[i] = (v>>(n-1-i))&1 != 0
	}
	bb.bits = append(newBits, bb.bits...)
}

// drainBytes removes whole bytes from the tail (LSB side) of the
// buffer, appending them to out. Each drained byte's 8 bits are read
// off the tail in order, the first of them becoming the byte's MSB
// (bit 7) and the last its LSB (bit 0) — mirroring flush_buffer's
// `buffer[-8:]` followed by `tobytes()`.
func (bb *bitBuffer) drainBytes(out []byte) []byte {
	for len(bb.bits) >= 8 {
		n := len(bb.bits)
		chunk := bb.bits[n-8:]
		var b byte
		for i := 0; i < 8; i++ {
			if chunk[i] {
				b |= 1 << uint(7-i)
			}
		}
		out = append(out, b)
		bb.bits = bb.bits[:n-8]
	}
	return out
}

// aligned reports whether the buffer currently holds zero bits.
func (bb *bitBuffer) aligned() bool {
	return len(bb.bits) == 0
}

// feed prepends the bits of a freshly read byte (MSB first) to the
// buffer, used when decoding needs more bits than are currently
// buffered — mirroring align_buffer's `BitArray(bytes=next_bytes) +
// self.buffer`.
func (bb *bitBuffer) feed(b byte) {
	newBits := make([]bool, 8)
	for i := 0; i < 8; i++ {
		newBits[i] = (b>>uint(7-i))&1 != 0
	}
	bb.bits = append(newBits, bb.bits...)
}

// takeBits removes and returns the last n bits of the buffer (the LSB
// side, mirroring extract_from_buffer's `buffer[-num_bits:]`) as a
// value with those bits as its low n bits, the first of the extracted
// run in the highest position.
func (bb *bitBuffer) takeBits(n uint) (uint64, error) {
	if uint(len(bb.bits)) < n {
		return 0, fmt.Errorf("%w: need %d bits, have %d", ErrTruncatedInput, n, len(bb.bits))
	}
	total := len(bb.bits)
	chunk := bb.bits[total-int(n):]
	var v uint64
	for i := uint(0); i < n; i++ {
		v <<= 1
		if chunk[i] {
			v |= 1
		}
	}
	bb.bits = bb.bits[:total-int(n)]
	return v, nil
}
