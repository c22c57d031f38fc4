// Package sshwire implements the length-prefixed binary encoding used by the
// openssh-key-v1 container: big-endian uint32 values, uint32-prefixed strings,
// and signed mpints.
//
// The reader is bounded and makes a single forward pass: a length prefix that
// would run past the end of the buffer fails with ErrShortBuffer instead of
// reading out of bounds. It never copies string contents; returned slices
// alias the input buffer, so callers that zeroize the input also zeroize
// everything read from it.
package sshwire

import (
	"encoding/binary"
	"errors"
	"math/big"
)

var (
	// ErrShortBuffer is returned when a read would run past the end of the
	// input buffer, either because a length prefix lies or because the
	// buffer was truncated.
	ErrShortBuffer = errors.New("sshwire: length prefix exceeds remaining buffer")

	// ErrNegativeMPInt is returned when an mpint encodes a negative value.
	// Key material never contains negative integers.
	ErrNegativeMPInt = errors.New("sshwire: negative mpint")
)

// Reader decodes wire values from an in-memory buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over b. The Reader aliases b; it does not copy.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Bytes reads exactly n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// String reads a uint32-prefixed byte string.
func (r *Reader) String() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.Remaining()) {
		return nil, ErrShortBuffer
	}
	return r.Bytes(int(n))
}

// MPInt reads a uint32-prefixed multiple-precision integer.
func (r *Reader) MPInt() (*big.Int, error) {
	b, err := r.String()
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && b[0]&0x80 != 0 {
		return nil, ErrNegativeMPInt
	}
	return new(big.Int).SetBytes(b), nil
}

// Rest consumes and returns all unread bytes.
func (r *Reader) Rest() []byte {
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}

// Writer encodes wire values into a growing buffer.
type Writer struct {
	buf []byte
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Uint32 appends a big-endian uint32.
func (w *Writer) Uint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// String appends a uint32-prefixed byte string.
func (w *Writer) String(b []byte) {
	w.Uint32(uint32(len(b)))
	w.Raw(b)
}

// MPInt appends n as a uint32-prefixed mpint. A leading zero byte is added
// when the top bit of the magnitude is set, so the value stays non-negative.
func (w *Writer) MPInt(n *big.Int) {
	b := n.Bytes()
	if len(b) > 0 && b[0]&0x80 != 0 {
		w.Uint32(uint32(len(b) + 1))
		w.buf = append(w.buf, 0)
		w.Raw(b)
		return
	}
	w.String(b)
}

// Len reports the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the encoded buffer. The slice aliases the Writer's storage.
func (w *Writer) Bytes() []byte {
	return w.buf
}
