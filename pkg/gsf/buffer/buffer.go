// Package buffer provides a growable byte container whose capacity grows by
// doubling and never shrinks.
package buffer

import (
	"io"
	"unicode/utf8"
)

// minCapacity is the capacity a zero buffer grows from.
const minCapacity = 16

// Buffer is an owned, growable byte container.
//
// Capacity only ever increases over the lifetime of a Buffer, and Len never
// exceeds Cap. The zero value is an empty buffer ready to use.
type Buffer struct {
	data []byte
}

// New creates a buffer with at least the given initial capacity.
func New(initial int) *Buffer {
	b := &Buffer{}
	if initial > 0 {
		b.data = make([]byte, 0, initial)
	}
	return b
}

// Len returns the number of bytes stored.
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the current capacity.
func (b *Buffer) Cap() int { return cap(b.data) }

// Bytes returns the stored bytes. The slice aliases the buffer and is only
// valid until the next mutating call.
func (b *Buffer) Bytes() []byte { return b.data }

// String returns the stored bytes as a string.
func (b *Buffer) String() string { return string(b.data) }

// Reserve grows the capacity to at least n by repeated doubling.
// It never shrinks the buffer.
func (b *Buffer) Reserve(n int) {
	c := cap(b.data)
	if n <= c {
		return
	}
	if c == 0 {
		c = minCapacity
	}
	for c < n {
		c *= 2
	}
	grown := make([]byte, len(b.data), c)
	copy(grown, b.data)
	b.data = grown
}

// Set replaces the contents with p.
func (b *Buffer) Set(p []byte) {
	b.Reserve(len(p))
	b.data = b.data[:len(p)]
	copy(b.data, p)
}

// Append adds p to the end of the buffer.
func (b *Buffer) Append(p []byte) {
	n := len(b.data)
	b.Reserve(n + len(p))
	b.data = b.data[:n+len(p)]
	copy(b.data[n:], p)
}

// AppendString adds s to the end of the buffer.
func (b *Buffer) AppendString(s string) {
	n := len(b.data)
	b.Reserve(n + len(s))
	b.data = b.data[:n+len(s)]
	copy(b.data[n:], s)
}

// AppendByte adds a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.Reserve(len(b.data) + 1)
	b.data = append(b.data, c)
}

// AppendRune adds the UTF-8 encoding of r.
func (b *Buffer) AppendRune(r rune) {
	b.Reserve(len(b.data) + utf8.RuneLen(r))
	b.data = utf8.AppendRune(b.data, r)
}

// Spare returns the unused capacity window after the stored bytes. Bytes
// written into it become part of the buffer after a call to Extend.
func (b *Buffer) Spare() []byte {
	return b.data[len(b.data):cap(b.data)]
}

// Extend commits n bytes previously written into the Spare window.
func (b *Buffer) Extend(n int) {
	if n < 0 || len(b.data)+n > cap(b.data) {
		panic("buffer: Extend out of range")
	}
	b.data = b.data[:len(b.data)+n]
}

// Truncate keeps the first n bytes. Capacity is unchanged.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.data) {
		panic("buffer: Truncate out of range")
	}
	b.data = b.data[:n]
}

// Reset empties the buffer but keeps its capacity.
func (b *Buffer) Reset() { b.data = b.data[:0] }

// Write appends p, doubling the capacity as needed. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// ReadFrom reads from r until EOF, doubling the capacity whenever the spare
// window is full.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if len(b.data) == cap(b.data) {
			b.Reserve(cap(b.data) + 1)
		}
		n, err := r.Read(b.Spare())
		if n > 0 {
			b.Extend(n)
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
