// Package arena implements a frame-scoped bump allocator: one contiguous
// buffer, O(1) typed allocation with alignment padding, and a single O(n)
// teardown that runs destructor thunks in reverse recording order.
//
// The arena is meant for pointer-free, POD-shaped per-tick scratch data —
// contacts, constraint scratch arrays — the way the original engine used
// placement-new into a raw byte buffer for the same purpose. Allocating a
// type that itself holds Go pointers/slices/maps through Alloc is not
// supported: the backing buffer is an untyped []byte and the garbage
// collector does not scan it for embedded pointers.
package arena

import (
	"errors"
	"unsafe"
)

// ErrOutOfArena is returned when an allocation would exceed the remaining
// buffer capacity.
var ErrOutOfArena = errors.New("arena: out of memory")

// Destroyer is implemented by types that need cleanup when the arena that
// allocated them is reset or dropped. Alloc always records a destruction
// thunk for T; the thunk is a no-op unless *T implements Destroyer.
type Destroyer interface {
	ArenaDestroy()
}

// Arena is a single-threaded bump allocator with bulk release.
type Arena struct {
	buf         []byte
	used        int
	destructors []func()
	objectCount int
}

// New allocates a zeroed buffer of the given size.
func New(size int) *Arena {
	return &Arena{buf: make([]byte, size)}
}

// Reserve is equivalent to Reset followed by allocating a fresh buffer of
// newSize bytes. Every pointer returned by a prior Alloc/AllocRaw is
// invalidated.
func (a *Arena) Reserve(newSize int) {
	a.Reset()
	a.buf = make([]byte, newSize)
}

// BufferSize returns the total capacity of the arena's backing buffer.
func (a *Arena) BufferSize() int { return len(a.buf) }

// UsedBytes returns the number of bytes currently in use.
func (a *Arena) UsedBytes() int { return a.used }

// ObjectCount returns the number of typed allocations recorded since the
// last reset.
func (a *Arena) ObjectCount() int { return a.objectCount }

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// AllocRaw reserves size bytes aligned to align and returns an untyped
// pointer into the arena's buffer. No destructor is recorded.
func (a *Arena) AllocRaw(size, align int) (unsafe.Pointer, error) {
	start := alignUp(a.used, align)
	if start < 0 || start+size > len(a.buf) {
		return nil, ErrOutOfArena
	}
	a.used = start + size
	return unsafe.Pointer(&a.buf[start]), nil
}

// Alloc constructs a T in the arena, copying value into the reserved slot,
// and returns an arena-owned pointer valid until the next Reset/Reserve/
// Drop. It fails with ErrOutOfArena when the remaining buffer is smaller
// than the aligned size of T.
func Alloc[T any](a *Arena, value T) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))

	ptr, err := a.AllocRaw(size, align)
	if err != nil {
		return nil, err
	}

	typed := (*T)(ptr)
	*typed = value

	a.destructors = append(a.destructors, func() {
		if d, ok := any(typed).(Destroyer); ok {
			d.ArenaDestroy()
		}
	})
	a.objectCount++

	return typed, nil
}

// Reset runs every recorded destructor in reverse recording order, zeroes
// the used prefix of the buffer, and rewinds the cursor to the start.
func (a *Arena) Reset() {
	for i := len(a.destructors) - 1; i >= 0; i-- {
		a.destructors[i]()
	}
	a.destructors = a.destructors[:0]

	for i := 0; i < a.used; i++ {
		a.buf[i] = 0
	}
	a.used = 0
	a.objectCount = 0
}

// Drop runs Reset and releases the backing buffer. The arena must not be
// used afterward except via Reserve, which allocates a new buffer.
func (a *Arena) Drop() {
	a.Reset()
	a.buf = nil
}
