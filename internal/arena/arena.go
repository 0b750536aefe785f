// Package arena implements a monotone bump allocator over one pre-reserved
// byte region. It is the leaf of the hot-path substrate: the pool and the
// ring both carve their backing storage out of an Arena, and nothing
// downstream of it ever calls into the Go allocator again.
package arena

import "unsafe"

// Arena is a single contiguous byte region carved up by monotone bump
// allocation. It is touched only by the thread that owns it (the matcher,
// plus whatever sets it up at startup); there is no internal synchronization.
type Arena struct {
	buf    []byte
	base   uintptr
	offset uintptr
}

// New reserves a single block of the given size. The block is allocated
// once, up front, and never resized.
func New(sizeBytes int) *Arena {
	if sizeBytes <= 0 {
		panic("arena: size must be positive")
	}
	buf := make([]byte, sizeBytes)
	return &Arena{
		buf:  buf,
		base: uintptr(unsafe.Pointer(&buf[0])),
	}
}

// Cap returns the total capacity of the arena in bytes.
func (a *Arena) Cap() int { return len(a.buf) }

// Used returns the number of bytes carved out so far.
func (a *Arena) Used() int { return int(a.offset) }

// Reset rewinds the bump offset to zero. Every allocation handed out before
// the reset is invalidated; callers must not dereference slices obtained
// from this arena after calling Reset.
func (a *Arena) Reset() {
	a.offset = 0
}

func alignUp(off, align uintptr) uintptr {
	return (off + align - 1) &^ (align - 1)
}

// alloc carves out size bytes aligned to align, zeroes them, and returns a
// pointer to the start of the region. It panics (the arena's "fails fatally"
// contract) if the remaining block cannot satisfy the request.
func (a *Arena) alloc(size, align uintptr) unsafe.Pointer {
	aligned := alignUp(a.offset, align)
	end := aligned + size
	if end > uintptr(len(a.buf)) {
		panic("arena: out of memory")
	}
	region := a.buf[aligned:end]
	for i := range region {
		region[i] = 0
	}
	a.offset = end
	return unsafe.Pointer(&a.buf[aligned])
}

// Alloc carves count*sizeof(T) zero-initialized, properly aligned bytes out
// of the arena and returns them as a []T backed directly by arena memory.
func Alloc[T any](a *Arena, count int) []T {
	if count <= 0 {
		panic("arena: count must be positive")
	}
	var zero T
	size := unsafe.Sizeof(zero)
	align := unsafe.Alignof(zero)
	ptr := a.alloc(size*uintptr(count), align)
	return unsafe.Slice((*T)(ptr), count)
}
