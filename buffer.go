// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/unrar

package unrar

import (
	"sync"
	"sync/atomic"
)

const (
	// textBufferSize is initial capacity of pooled name/comment buffers.
	textBufferSize = 512
	// textBufferMaxKeep caps capacity of buffers returned to the pool.
	textBufferMaxKeep = 64 * 1024
)

var (
	// textBufferPool reuses raw name/comment buffers across entries.
	textBufferPool = sync.Pool{
		New: func() any {
			return &textBuffer{b: make([]byte, 0, textBufferSize)}
		},
	}
)

// textBuffer holds raw name or comment bytes of unknown encoding.
type textBuffer struct {
	b []byte
}

// BufferStats reports raw text buffer accounting for one session.
type BufferStats struct {
	// Acquired is number of raw buffers taken from the pool.
	Acquired int64 `json:"acquired" yaml:"acquired"`
	// Released is number of raw buffers returned to the pool.
	Released int64 `json:"released" yaml:"released"`
}

// Outstanding returns buffers acquired but not yet released.
func (s BufferStats) Outstanding() int64 {
	return s.Acquired - s.Released
}

// bufferLedger hands out pooled text buffers and counts their lifecycle.
type bufferLedger struct {
	acquired atomic.Int64
	released atomic.Int64
}

// acquire returns an empty pooled buffer owned by the caller until release.
func (l *bufferLedger) acquire() *textBuffer {
	l.acquired.Add(1)

	tb := textBufferPool.Get().(*textBuffer) //nolint:forcetypeassert // pool contains only *textBuffer
	tb.b = tb.b[:0]
	return tb
}

// release returns tb to the pool; tb must not be used afterward.
func (l *bufferLedger) release(tb *textBuffer) {
	if tb == nil {
		return
	}

	l.released.Add(1)
	if cap(tb.b) > textBufferMaxKeep {
		return
	}

	tb.b = tb.b[:0]
	textBufferPool.Put(tb)
}

// stats returns a snapshot of counters.
func (l *bufferLedger) stats() BufferStats {
	return BufferStats{
		Acquired: l.acquired.Load(),
		Released: l.released.Load(),
	}
}
