// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "fmt"

// Writer accumulates little-endian bytes with a sticky error, in the
// shape of the teacher's utils/wrappers.Packer: every Pack* method is a
// no-op once Err is set, so a chain of calls can be written without
// checking each one, and the caller checks Err once at the end.
type Writer struct {
	Bytes []byte
	Err   error
}

// NewWriter returns a Writer with capacity hint size.
func NewWriter(size int) *Writer {
	return &Writer{Bytes: make([]byte, 0, size)}
}

// PackByte appends a single byte.
func (w *Writer) PackByte(b byte) {
	if w.Err != nil {
		return
	}
	w.Bytes = append(w.Bytes, b)
}

// PackBytes appends raw bytes verbatim.
func (w *Writer) PackBytes(b []byte) {
	if w.Err != nil {
		return
	}
	w.Bytes = append(w.Bytes, b...)
}

// PackUint16 appends a little-endian uint16.
func (w *Writer) PackUint16(v uint16) {
	if w.Err != nil {
		return
	}
	w.Bytes = append(w.Bytes, byte(v), byte(v>>8))
}

// PackUint32 appends a little-endian uint32.
func (w *Writer) PackUint32(v uint32) {
	if w.Err != nil {
		return
	}
	w.Bytes = append(w.Bytes, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// PackUint64 appends a little-endian uint64.
func (w *Writer) PackUint64(v uint64) {
	if w.Err != nil {
		return
	}
	w.Bytes = append(w.Bytes,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// Fail sets Err if it is not already set, fixing the first failure in
// a chain of Pack calls.
func (w *Writer) Fail(err error) {
	if w.Err == nil {
		w.Err = err
	}
}

// Reader consumes little-endian bytes with a sticky error and a cursor.
type Reader struct {
	Bytes []byte
	Pos   int
	Err   error
}

// NewReader wraps b for sequential little-endian reads.
func NewReader(b []byte) *Reader {
	return &Reader{Bytes: b}
}

// Remaining returns the unread tail of the buffer.
func (r *Reader) Remaining() []byte {
	return r.Bytes[r.Pos:]
}

// need fails the reader if fewer than n bytes remain.
func (r *Reader) need(n int) bool {
	if r.Err != nil {
		return false
	}
	if len(r.Bytes)-r.Pos < n {
		r.Err = fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedInput, n, len(r.Bytes)-r.Pos)
		return false
	}
	return true
}

// UnpackByte reads a single byte.
func (r *Reader) UnpackByte() byte {
	if !r.need(1) {
		return 0
	}
	b := r.Bytes[r.Pos]
	r.Pos++
	return b
}

// UnpackBytes reads n raw bytes.
func (r *Reader) UnpackBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.Bytes[r.Pos : r.Pos+n]
	r.Pos += n
	return b
}

// UnpackUint16 reads a little-endian uint16.
func (r *Reader) UnpackUint16() uint16 {
	b := r.UnpackBytes(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

// UnpackUint32 reads a little-endian uint32.
func (r *Reader) UnpackUint32() uint32 {
	b := r.UnpackBytes(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// UnpackUint64 reads a little-endian uint64.
func (r *Reader) UnpackUint64() uint64 {
	b := r.UnpackBytes(8)
	if b == nil {
		return 0
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// Fail sets Err if it is not already set.
func (r *Reader) Fail(err error) {
	if r.Err == nil {
		r.Err = err
	}
}
