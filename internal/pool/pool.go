// Package pool provides reusable serialization buffers backed by sync.Pool.
//
// File-backed containers re-serialize their full row store on every
// mutation, so the assembly buffer is reused heavily during edit
// sessions and watch loops.
package pool

import (
	"sync"
)

// DefaultBufferSize is the initial capacity of pooled buffers. Sized
// for a typical serialized container rather than a single record.
const DefaultBufferSize = 256 * 1024

// ByteBuffer wraps a byte slice for pooled reuse.
type ByteBuffer struct {
	Data []byte
}

// Reset clears the buffer for reuse.
func (b *ByteBuffer) Reset() {
	b.Data = b.Data[:0]
}

// Grow ensures the buffer has at least n bytes of capacity.
func (b *ByteBuffer) Grow(n int) {
	if cap(b.Data) < n {
		next := make([]byte, len(b.Data), n)
		copy(next, b.Data)
		b.Data = next
	}
}

// Write appends p to the buffer. It never fails.
func (b *ByteBuffer) Write(p []byte) (int, error) {
	b.Data = append(b.Data, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *ByteBuffer) WriteString(s string) {
	b.Data = append(b.Data, s...)
}

// WriteByte appends one byte to the buffer.
func (b *ByteBuffer) WriteByte(c byte) error {
	b.Data = append(b.Data, c)
	return nil
}

// Len returns the current length of data in the buffer.
func (b *ByteBuffer) Len() int {
	return len(b.Data)
}

// Bytes returns the underlying byte slice.
func (b *ByteBuffer) Bytes() []byte {
	return b.Data
}

// BufferPool manages reusable byte buffers.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a pool whose buffers start at bufferSize
// capacity. Non-positive sizes fall back to DefaultBufferSize.
func NewBufferPool(bufferSize int) *BufferPool {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	bp := &BufferPool{}
	bp.pool.New = func() any {
		return &ByteBuffer{
			Data: make([]byte, 0, bufferSize),
		}
	}
	return bp
}

// Get retrieves a buffer from the pool.
func (p *BufferPool) Get() *ByteBuffer {
	return p.pool.Get().(*ByteBuffer)
}

// Put resets buf and returns it to the pool.
func (p *BufferPool) Put(buf *ByteBuffer) {
	buf.Reset()
	p.pool.Put(buf)
}
