package arena

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// region names which stack and half a typed helper allocates from.
type region uint8

const (
	regionPrimary region = iota
	regionFrameCurrent
	regionFrameNext
)

// reserve returns size bytes aligned to align from r.
func (a *Arena) reserve(r region, size, align uint64) ([]byte, error) {
	if r == regionPrimary {
		return a.allocPrimary(size, align)
	}
	if size > math.MaxUint32 {
		a.panicIfShutDown()
		return nil, a.fail(errors.Wrapf(ErrOutOfMemory, "frame stack: %d bytes requested", size),
			"cannot allocate from frame stack")
	}
	side := a.frameTier
	if r == regionFrameNext {
		side = side.Opposite()
	}
	return a.allocFrame(side, uint32(size), uint32(align))
}

func allocOne[T any](a *Arena, r region, zero bool) (*T, error) {
	if err := checkPointerFree(reflect.TypeFor[T]()); err != nil {
		return nil, err
	}
	var v T
	size := uint64(unsafe.Sizeof(v))
	if size == 0 {
		return new(T), nil
	}
	b, err := a.reserve(r, size, uint64(unsafe.Alignof(v)))
	if err != nil {
		return nil, err
	}
	if zero {
		clear(b)
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

func allocMany[T any](a *Arena, r region, n int, zero bool) ([]T, error) {
	if err := checkPointerFree(reflect.TypeFor[T]()); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	var v T
	elem := uint64(unsafe.Sizeof(v))
	if elem == 0 {
		return make([]T, n), nil
	}
	if uint64(n) > math.MaxUint64/elem {
		a.panicIfShutDown()
		return nil, a.fail(errors.Wrapf(ErrOutOfMemory, "%d elements of %d bytes", n, elem),
			"array size overflows")
	}
	b, err := a.reserve(r, elem*uint64(n), uint64(unsafe.Alignof(v)))
	if err != nil {
		return nil, err
	}
	if zero {
		clear(b)
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// Alloc places a zeroed T in the current Primary Stack tier.
// T must not contain Go pointers.
func Alloc[T any](a *Arena) (*T, error) {
	return allocOne[T](a, regionPrimary, true)
}

// AllocUninitialized places a T in the current Primary Stack tier without
// clearing it. The caller initializes every byte before use.
func AllocUninitialized[T any](a *Arena) (*T, error) {
	return allocOne[T](a, regionPrimary, false)
}

// AllocSlice reserves a raw array of n elements in the current Primary Stack
// tier. Element contents are whatever the bytes held before.
// Returns nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	return allocMany[T](a, regionPrimary, n, false)
}

// AllocSliceZeroed is AllocSlice with the elements cleared.
func AllocSliceZeroed[T any](a *Arena, n int) ([]T, error) {
	return allocMany[T](a, regionPrimary, n, true)
}

// AllocFrame places a zeroed T in current-frame memory.
func AllocFrame[T any](a *Arena) (*T, error) {
	return allocOne[T](a, regionFrameCurrent, true)
}

// AllocFrameSlice reserves a raw array of n elements in current-frame memory.
func AllocFrameSlice[T any](a *Arena, n int) ([]T, error) {
	return allocMany[T](a, regionFrameCurrent, n, false)
}

// AllocFrameNext places a zeroed T in next-frame memory.
func AllocFrameNext[T any](a *Arena) (*T, error) {
	return allocOne[T](a, regionFrameNext, true)
}

// AllocFrameNextSlice reserves a raw array of n elements in next-frame memory.
func AllocFrameNextSlice[T any](a *Arena, n int) ([]T, error) {
	return allocMany[T](a, regionFrameNext, n, false)
}

// ConstructAt builds a T in storage the caller already owns: the value is
// zeroed and then passed to ctor, if any. Ownership of the storage does not
// change.
func ConstructAt[T any](p *T, ctor func(*T)) *T {
	var zero T
	*p = zero
	if ctor != nil {
		ctor(p)
	}
	return p
}

// DestroyAt runs dtor on the value at p without releasing its storage.
func DestroyAt[T any](p *T, dtor func(*T)) {
	if dtor != nil {
		dtor(p)
	}
}
