package arena

import (
	"log/slog"
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// DefaultPoolCapacity is used by NewPool when capacity is zero.
const DefaultPoolCapacity = 32

// noSlot terminates the free list.
const noSlot = math.MaxUint32

// slot is either free, holding the index of the next free slot, or
// occupied, holding a value.
type slot[T any] struct {
	next uint32
	used bool
	val  T
}

// Pool is a fixed-capacity store of same-typed values with O(1) acquire and
// release. Free slots form a singly linked list threaded through the slot
// array, so release order is reused LIFO. The slot array is carved from the
// Primary Stack tier that was current when the pool was created and lives
// as long as that tier does.
//
// Add pairs with Remove (constructor and destructor run); Allocate pairs
// with Deallocate (neither runs). Pool is not safe for concurrent use.
type Pool[T any] struct {
	a         *Arena
	slots     []slot[T]
	firstFree uint32
	inUse     uint32
	ctor      func(*T)
	dtor      func(*T)
}

// PoolOption configures a Pool.
type PoolOption[T any] func(*Pool[T])

// WithConstructor sets the function Add runs on each freshly zeroed value.
func WithConstructor[T any](fn func(*T)) PoolOption[T] {
	return func(p *Pool[T]) { p.ctor = fn }
}

// WithDestructor sets the function Remove runs before releasing a value.
func WithDestructor[T any](fn func(*T)) PoolOption[T] {
	return func(p *Pool[T]) { p.dtor = fn }
}

// NewPool reserves capacity slots in the arena's current Primary Stack tier
// and chains every slot into the free list in index order.
func NewPool[T any](a *Arena, capacity uint32, opts ...PoolOption[T]) (*Pool[T], error) {
	if capacity == 0 {
		capacity = DefaultPoolCapacity
	}
	if capacity == noSlot || uint64(capacity) > uint64(maxInt) {
		return nil, errors.Newf("arena: pool capacity %d is too large", capacity)
	}
	a.log.Debug("initializing memory pool", slog.Uint64("capacity", uint64(capacity)))

	slots, err := AllocSlice[slot[T]](a, int(capacity))
	if err != nil {
		return nil, errors.Wrap(err, "arena: allocating memory pool")
	}
	for i := range slots {
		slots[i].next = uint32(i) + 1
		slots[i].used = false
	}
	slots[len(slots)-1].next = noSlot

	p := &Pool[T]{a: a, slots: slots}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Add takes the first free slot, constructs a value in it and returns it.
func (p *Pool[T]) Add() (*T, error) {
	p.a.log.Debug("adding a value to the memory pool")
	s, err := p.pop()
	if err != nil {
		return nil, err
	}
	return ConstructAt(&s.val, p.ctor), nil
}

// Allocate takes the first free slot without constructing anything in it.
// The caller initializes the value.
func (p *Pool[T]) Allocate() (*T, error) {
	p.a.log.Debug("allocating space in the memory pool")
	s, err := p.pop()
	if err != nil {
		return nil, err
	}
	return &s.val, nil
}

// Deallocate returns ptr's slot to the free list without destroying it.
func (p *Pool[T]) Deallocate(ptr *T) error {
	p.a.log.Debug("freeing space in the memory pool")
	return p.push(ptr, false)
}

// Remove destroys the value at ptr and returns its slot to the free list.
func (p *Pool[T]) Remove(ptr *T) error {
	p.a.log.Debug("removing a value from the memory pool")
	return p.push(ptr, true)
}

// Get returns the value stored in slot i, free or not. It panics if i is out
// of range.
func (p *Pool[T]) Get(i uint32) *T {
	return &p.slots[i].val
}

// Index returns the slot index of ptr.
func (p *Pool[T]) Index(ptr *T) (uint32, bool) {
	if ptr == nil || len(p.slots) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(&p.slots[0].val))
	addr := uintptr(unsafe.Pointer(ptr))
	if addr < base {
		return 0, false
	}
	off := addr - base
	size := unsafe.Sizeof(p.slots[0])
	if off%size != 0 || off/size >= uintptr(len(p.slots)) {
		return 0, false
	}
	return uint32(off / size), true
}

// Cap returns the number of slots.
func (p *Pool[T]) Cap() uint32 { return uint32(len(p.slots)) }

// InUse returns the number of occupied slots.
func (p *Pool[T]) InUse() uint32 { return p.inUse }

// Free returns the number of free slots.
func (p *Pool[T]) Free() uint32 { return p.Cap() - p.inUse }

// SlotSize returns the bytes used per slot, including the free-list link.
func (p *Pool[T]) SlotSize() uint64 {
	var s slot[T]
	return uint64(unsafe.Sizeof(s))
}

// ByteSize returns the bytes reserved for the slot array.
func (p *Pool[T]) ByteSize() uint64 { return p.SlotSize() * uint64(len(p.slots)) }

// Stats returns a snapshot of the pool's occupancy.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Capacity: p.Cap(),
		InUse:    p.inUse,
		Free:     p.Free(),
		SlotSize: p.SlotSize(),
		ByteSize: p.ByteSize(),
	}
}

func (p *Pool[T]) pop() (*slot[T], error) {
	p.a.panicIfShutDown()
	if p.firstFree == noSlot {
		err := errors.Wrapf(ErrPoolExhausted, "%d of %d slots in use", p.inUse, len(p.slots))
		return nil, p.a.fail(err, "memory pool exhausted", slog.Int("capacity", len(p.slots)))
	}
	s := &p.slots[p.firstFree]
	p.firstFree = s.next
	s.next = noSlot
	s.used = true
	p.inUse++
	return s, nil
}

func (p *Pool[T]) push(ptr *T, destroy bool) error {
	p.a.panicIfShutDown()
	i, ok := p.Index(ptr)
	if !ok {
		return p.a.fail(errors.Wrapf(ErrBadPointer, "%p", ptr),
			"this pointer does not fall within the allocated space")
	}
	s := &p.slots[i]
	if !s.used {
		return p.a.fail(errors.Wrapf(ErrNotAllocated, "slot %d", i),
			"slot is already free", slog.Uint64("slot", uint64(i)))
	}
	if destroy {
		DestroyAt(&s.val, p.dtor)
	}
	s.used = false
	s.next = p.firstFree
	p.firstFree = i
	p.inUse--
	return nil
}
