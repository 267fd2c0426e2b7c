// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bufferpool maintains a pool of reusable, reference-counted byte
// buffers for record payloads. Unlike a fixed-size pool, buffers grow to
// whatever size a record demands and are returned to the pool at their
// grown capacity, so steady-state reading of a stream with uniformly
// sized records settles into zero extra allocation.
package bufferpool

import (
	"sync"
	"sync/atomic"
)

// Pool hands out growable buffers and reclaims them on Release.
type Pool struct {
	base sync.Pool
}

// Get returns a buffer with at least size bytes available, allocating one
// if the pool is empty or every pooled buffer is too small. The returned
// buffer has a reference count of 1.
//
// The caller must call Release when done with it.
func (p *Pool) Get(size int) *Buffer {
	b, ok := p.base.Get().(*Buffer)
	if !ok {
		b = &Buffer{}
	}
	if cap(b.bytes) < size {
		b.bytes = make([]byte, size)
	}
	b.bytes = b.bytes[:size]
	b.pool = p
	b.refcount = 1
	return b
}

func (p *Pool) releaseNode(b *Buffer) {
	p.base.Put(b)
}

// Buffer is a reference-counted byte buffer that can be returned to a Pool
// for reuse. Failing to release a Buffer is not a leak, it just prevents
// reuse of the backing array.
type Buffer struct {
	refcount int64
	bytes    []byte
	pool     *Pool
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte { return b.bytes }

// Retain increments the reference count. Every Retain must be matched by a
// Release.
func (b *Buffer) Retain() { atomic.AddInt64(&b.refcount, 1) }

// Release decrements the reference count, returning the buffer to its pool
// once it reaches zero. A Buffer must only be handed out once per Get.
func (b *Buffer) Release() {
	if atomic.AddInt64(&b.refcount, -1) != 0 {
		return
	}
	pool := b.pool
	b.pool = nil
	pool.releaseNode(b)
}
