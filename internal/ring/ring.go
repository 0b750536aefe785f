// Package ring implements a bounded, power-of-two, wait-free SPSC queue.
// Exactly one producer and one consumer goroutine may call Push and Pop
// respectively; calling either from more than one goroutine at a time is a
// caller bug this package does not defend against.
package ring

import (
	"sync/atomic"

	"matchcore/internal/arena"
)

const cacheLineSize = 64

// Ring is a single-producer/single-consumer circular buffer of T. head and
// tail each get a full cache line so the producer's writes to tail never
// bounce the consumer's cache line for head, and vice versa.
type Ring[T any] struct {
	head uint64
	_    [cacheLineSize - 8]byte
	tail uint64
	_    [cacheLineSize - 8]byte

	// producerTail/consumerHead are private working copies: the producer
	// never needs to re-derive its own write cursor from the atomic field,
	// and likewise for the consumer's read cursor. Only the owning goroutine
	// ever touches its own copy, so these need no synchronization.
	producerTail uint64
	consumerHead uint64
	_            [cacheLineSize - 16]byte

	mask uint64
	buf  []T
}

// New builds a ring of the given power-of-two capacity, carving its backing
// slots out of a.
func New[T any](a *arena.Arena, capacity int) *Ring[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a positive power of two")
	}
	return &Ring[T]{
		mask: uint64(capacity - 1),
		buf:  arena.Alloc[T](a, capacity),
	}
}

// Capacity returns the fixed number of slots.
func (r *Ring[T]) Capacity() int { return int(r.mask) + 1 }

// Push copies v into the next slot. It returns false and leaves all state
// unchanged if the ring is full. Must only be called from the producer.
func (r *Ring[T]) Push(v T) bool {
	tail := r.producerTail
	head := atomic.LoadUint64(&r.head) // acquire: observe consumer's progress
	if tail+1-head > uint64(len(r.buf)) {
		return false
	}
	r.buf[tail&r.mask] = v
	r.producerTail = tail + 1
	atomic.StoreUint64(&r.tail, r.producerTail) // release: publish the slot
	return true
}

// Pop moves the oldest item into the return value. ok is false and state is
// left unchanged if the ring is empty. Must only be called from the
// consumer.
func (r *Ring[T]) Pop() (v T, ok bool) {
	head := r.consumerHead
	tail := atomic.LoadUint64(&r.tail) // acquire: observe producer's publish
	if tail == head {
		return v, false
	}
	v = r.buf[head&r.mask]
	r.consumerHead = head + 1
	atomic.StoreUint64(&r.head, r.consumerHead) // release
	return v, true
}

// Len returns an approximate occupancy; it is racy by nature (the other side
// may be mutating concurrently) and is intended for diagnostics only, never
// for correctness decisions on the hot path.
func (r *Ring[T]) Len() int {
	tail := atomic.LoadUint64(&r.tail)
	head := atomic.LoadUint64(&r.head)
	return int(tail - head)
}
