// Package pool provides a pooled growable byte buffer used by the page
// encoders to avoid per-value allocation during a write session.
package pool

import "sync"

const defaultBufferSize = 4 * 1024

// Buffer is a growable []byte with an amortized growth strategy, reused
// across encoder lifetimes via the package-level pool below.
type Buffer struct {
	B []byte
}

// Bytes returns the accumulated contents.
func (b *Buffer) Bytes() []byte { return b.B }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return len(b.B) }

// Reset empties the buffer but retains its backing array.
func (b *Buffer) Reset() { b.B = b.B[:0] }

// Write appends data, growing the backing array if needed.
func (b *Buffer) Write(data []byte) {
	b.B = append(b.B, data...)
}

// Grow ensures at least n more bytes can be appended without a
// reallocation, using a size-dependent growth factor so small buffers
// don't thrash and large ones don't over-allocate.
func (b *Buffer) Grow(n int) {
	available := cap(b.B) - len(b.B)
	if available >= n {
		return
	}

	growBy := defaultBufferSize
	if cap(b.B) > 4*defaultBufferSize {
		growBy = cap(b.B) / 4
	}
	if growBy < n {
		growBy = n
	}

	next := make([]byte, len(b.B), len(b.B)+growBy)
	copy(next, b.B)
	b.B = next
}

var bufferPool = sync.Pool{
	New: func() any { return &Buffer{B: make([]byte, 0, defaultBufferSize)} },
}

// Get borrows a reset Buffer from the pool.
func Get() *Buffer {
	return bufferPool.Get().(*Buffer)
}

// Put returns a Buffer to the pool for reuse.
func Put(b *Buffer) {
	b.Reset()
	bufferPool.Put(b)
}
