// If you are AI: Lock-free SPSC ring buffer for subscription message delivery.
// CRITICAL: writePos/readPos increment freely (never masked); the mask is
// only applied when indexing into the buffer array.

package pubsub

import (
	"sync/atomic"
)

// BackpressureStrategy defines how the ring buffer handles overflow.
type BackpressureStrategy uint8

const (
	BackpressureDropOldest BackpressureStrategy = iota
	BackpressureDropNewest
)

// RingBuffer is a bounded circular buffer for MediaMessage delivery,
// lock-free for single-producer/single-consumer use.
type RingBuffer struct {
	buffer   []*MediaMessage
	size     uint32
	mask     uint32
	writePos uint32
	readPos  uint32
	strategy BackpressureStrategy
	dropped  uint64
}

// NewRingBuffer rounds capacity up to the next power of 2.
func NewRingBuffer(capacity uint32, strategy BackpressureStrategy) *RingBuffer {
	actualSize := uint32(1)
	for actualSize < capacity {
		actualSize <<= 1
	}
	return &RingBuffer{
		buffer:   make([]*MediaMessage, actualSize),
		size:     actualSize,
		mask:     actualSize - 1,
		strategy: strategy,
	}
}

// Write returns true if written, false if dropped (DropNewest-full case).
func (rb *RingBuffer) Write(msg *MediaMessage) bool {
	if msg == nil {
		return false
	}
	writePos := atomic.LoadUint32(&rb.writePos)
	readPos := atomic.LoadUint32(&rb.readPos)

	if writePos-readPos >= rb.size {
		atomic.AddUint64(&rb.dropped, 1)
		if rb.strategy == BackpressureDropOldest {
			atomic.AddUint32(&rb.readPos, 1)
		} else {
			return false
		}
	}

	rb.buffer[writePos&rb.mask] = msg
	atomic.StoreUint32(&rb.writePos, writePos+1)
	return true
}

// Read returns nil, false when empty.
func (rb *RingBuffer) Read() (*MediaMessage, bool) {
	readPos := atomic.LoadUint32(&rb.readPos)
	writePos := atomic.LoadUint32(&rb.writePos)
	if readPos == writePos {
		return nil, false
	}
	msg := rb.buffer[readPos&rb.mask]
	atomic.AddUint32(&rb.readPos, 1)
	return msg, true
}

func (rb *RingBuffer) Dropped() uint64 { return atomic.LoadUint64(&rb.dropped) }

func (rb *RingBuffer) Available() uint32 {
	writePos := atomic.LoadUint32(&rb.writePos)
	readPos := atomic.LoadUint32(&rb.readPos)
	return rb.size - (writePos - readPos)
}

// Len reports the number of buffered-but-unread messages.
func (rb *RingBuffer) Len() uint32 {
	writePos := atomic.LoadUint32(&rb.writePos)
	readPos := atomic.LoadUint32(&rb.readPos)
	return writePos - readPos
}
