package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type particle struct {
	X, Y   float32
	VX, VY float32
	Life   int32
}

func TestNewPool(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)

	p, err := NewPool[particle](a, 8)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), p.Cap())
	assert.Zero(t, p.InUse())
	assert.Equal(t, uint32(8), p.Free())
	assert.Equal(t, p.ByteSize(), a.Markers().Global, "slots come from the primary stack")

	// The free list chains slots in index order.
	for i := uint32(0); i < 8; i++ {
		got, err := p.Allocate()
		require.NoError(t, err)
		assert.Same(t, p.Get(i), got)
	}
}

func TestNewPoolDefaultCapacity(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	p, err := NewPool[int64](a, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultPoolCapacity), p.Cap())
}

func TestNewPoolErrors(t *testing.T) {
	a := newTestArena(t, 64, 0)

	_, err := NewPool[particle](a, 100)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	_, err = NewPool[[]byte](a, 1)
	assert.ErrorIs(t, err, ErrPointerType)

	_, err = NewPool[int32](a, noSlot)
	assert.Error(t, err)
	assert.Equal(t, Markers{Rear: 64}, a.Markers())
}

func TestPoolFreeListIntegrity(t *testing.T) {
	const k = 16
	a := newTestArena(t, 1<<16, 0)
	p, err := NewPool[particle](a, k)
	require.NoError(t, err)

	lo := uintptr(unsafe.Pointer(p.Get(0)))
	hi := uintptr(unsafe.Pointer(p.Get(k - 1)))
	seen := make(map[uintptr]bool, k)
	for range k {
		v, err := p.Allocate()
		require.NoError(t, err)
		addr := uintptr(unsafe.Pointer(v))
		assert.False(t, seen[addr], "slot handed out twice")
		seen[addr] = true
		assert.GreaterOrEqual(t, addr, lo)
		assert.LessOrEqual(t, addr, hi)
	}
	assert.Len(t, seen, k)

	// Slots never overlap: neighbours are at least sizeof(T) apart.
	for i := uint32(1); i < k; i++ {
		gap := uintptr(unsafe.Pointer(p.Get(i))) - uintptr(unsafe.Pointer(p.Get(i-1)))
		assert.GreaterOrEqual(t, gap, unsafe.Sizeof(particle{}))
	}

	v, err := p.Allocate()
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrPoolExhausted)
	_, err = p.Add()
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, uint32(k), p.InUse())
}

func TestPoolLIFOReuse(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	p, err := NewPool[particle](a, 4)
	require.NoError(t, err)

	first, err := p.Allocate()
	require.NoError(t, err)
	second, err := p.Allocate()
	require.NoError(t, err)

	require.NoError(t, p.Deallocate(first))
	again, err := p.Allocate()
	require.NoError(t, err)
	assert.Same(t, first, again)

	require.NoError(t, p.Deallocate(again))
	require.NoError(t, p.Deallocate(second))
	got, err := p.Allocate()
	require.NoError(t, err)
	assert.Same(t, second, got, "last released is first reused")
	got, err = p.Allocate()
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestPoolConstructionPairing(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	var ctors, dtors int
	p, err := NewPool(a, 4,
		WithConstructor(func(v *particle) {
			ctors++
			v.Life = 60
		}),
		WithDestructor(func(v *particle) {
			dtors++
			assert.Equal(t, int32(59), v.Life, "destructor sees the live value")
		}))
	require.NoError(t, err)

	v, err := p.Add()
	require.NoError(t, err)
	assert.Equal(t, particle{Life: 60}, *v)
	v.Life--
	require.NoError(t, p.Remove(v))
	assert.Equal(t, 1, ctors)
	assert.Equal(t, 1, dtors)

	raw, err := p.Allocate()
	require.NoError(t, err)
	require.NoError(t, p.Deallocate(raw))
	assert.Equal(t, 1, ctors, "Allocate runs no constructor")
	assert.Equal(t, 1, dtors, "Deallocate runs no destructor")
}

func TestPoolAddZeroes(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	p, err := NewPool[particle](a, 1)
	require.NoError(t, err)

	v, err := p.Allocate()
	require.NoError(t, err)
	*v = particle{X: 1, Y: 2, Life: 3}
	require.NoError(t, p.Deallocate(v))

	v, err = p.Add()
	require.NoError(t, err)
	assert.Equal(t, particle{}, *v)
}

func TestPoolReleaseErrors(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	p, err := NewPool[particle](a, 4)
	require.NoError(t, err)
	other, err := NewPool[particle](a, 4)
	require.NoError(t, err)

	v, err := p.Allocate()
	require.NoError(t, err)
	foreign, err := other.Allocate()
	require.NoError(t, err)

	assert.ErrorIs(t, p.Deallocate(nil), ErrBadPointer)
	assert.ErrorIs(t, p.Deallocate(foreign), ErrBadPointer)
	assert.ErrorIs(t, p.Remove(&particle{}), ErrBadPointer)

	// A pointer into the middle of a slot is not a slot.
	mid := (*particle)(unsafe.Add(unsafe.Pointer(v), 4))
	assert.ErrorIs(t, p.Deallocate(mid), ErrBadPointer)

	require.NoError(t, p.Deallocate(v))
	assert.ErrorIs(t, p.Deallocate(v), ErrNotAllocated, "double release")
	assert.ErrorIs(t, p.Remove(p.Get(3)), ErrNotAllocated, "never handed out")
	assert.Zero(t, p.InUse())
}

func TestPoolDebugPanics(t *testing.T) {
	a := newDebugArena(t, 1<<16, 0)
	p, err := NewPool[int64](a, 1)
	require.NoError(t, err)

	v, err := p.Add()
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = p.Add() }, "exhausted")
	assert.Panics(t, func() { _ = p.Deallocate(new(int64)) }, "foreign pointer")
	require.NoError(t, p.Remove(v))
	assert.Panics(t, func() { _ = p.Remove(v) }, "double release")
}

func TestPoolIndex(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	p, err := NewPool[uint8](a, 5)
	require.NoError(t, err)

	for i := uint32(0); i < 5; i++ {
		got, ok := p.Index(p.Get(i))
		require.True(t, ok)
		assert.Equal(t, i, got)
	}
	_, ok := p.Index(nil)
	assert.False(t, ok)
}

func TestPoolStats(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	p, err := NewPool[particle](a, 10)
	require.NoError(t, err)
	for range 3 {
		_, err := p.Add()
		require.NoError(t, err)
	}

	s := p.Stats()
	assert.Equal(t, uint32(10), s.Capacity)
	assert.Equal(t, uint32(3), s.InUse)
	assert.Equal(t, uint32(7), s.Free)
	assert.GreaterOrEqual(t, s.SlotSize, uint64(unsafe.Sizeof(particle{})))
	assert.Equal(t, s.SlotSize*10, s.ByteSize)
}

func TestPoolInFrontTier(t *testing.T) {
	a := newTestArena(t, 1<<16, 0)
	_, err := a.AllocPrimary(100)
	require.NoError(t, err)
	a.SetTier(PrimaryFront)

	p, err := NewPool[particle](a, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), a.Markers().Global, "level pools leave Global alone")
	assert.Greater(t, a.Markers().Front, uint64(100))
	_, err = p.Add()
	require.NoError(t, err)
}
