package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	a int64
	b int32
	c int16
	d int8
}

type vertex struct {
	Pos    [3]float32
	Normal [3]float32
	UV     [2]float32
}

func TestAlloc(t *testing.T) {
	a := newTestArena(t, 1024, 0)

	// Dirty the memory first so zeroing is observable.
	raw, err := a.AllocPrimary(64)
	require.NoError(t, err)
	for i := range raw {
		raw[i] = 0xff
	}
	a.ClearPrimaryStack()

	ptr, err := Alloc[int64](a)
	require.NoError(t, err)
	assert.Zero(t, *ptr)

	s, err := Alloc[testStruct](a)
	require.NoError(t, err)
	assert.Equal(t, testStruct{}, *s)

	*ptr = 42
	s.a = 100
	assert.Equal(t, int64(42), *ptr)
	assert.Equal(t, int64(100), s.a)
	assert.Equal(t, uint64(8), primaryOffset(t, a, unsafe.Slice((*byte)(unsafe.Pointer(s)), unsafe.Sizeof(*s))))
}

func TestAllocUninitialized(t *testing.T) {
	a := newTestArena(t, 1024, 0)
	raw, err := a.AllocPrimary(8)
	require.NoError(t, err)
	copy(raw, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	a.ClearPrimaryStack()

	ptr, err := AllocUninitialized[[8]byte](a)
	require.NoError(t, err)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, *ptr, "bytes are left as they were")
}

func TestAllocSlice(t *testing.T) {
	a := newTestArena(t, 4096, 0)

	verts, err := AllocSlice[vertex](a, 10)
	require.NoError(t, err)
	assert.Len(t, verts, 10)
	assert.Equal(t, 10, cap(verts))
	for i := range verts {
		verts[i].UV = [2]float32{float32(i), 1}
	}
	assert.Equal(t, float32(9), verts[9].UV[0])
	assert.Equal(t, uint64(10*unsafe.Sizeof(vertex{})), a.Markers().Global)

	empty, err := AllocSlice[int](a, 0)
	require.NoError(t, err)
	assert.Nil(t, empty)
	negative, err := AllocSlice[int](a, -1)
	require.NoError(t, err)
	assert.Nil(t, negative)

	zeroed, err := AllocSliceZeroed[uint32](a, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0, 0, 0, 0}, zeroed)
}

func TestAllocSliceExhaustion(t *testing.T) {
	a := newTestArena(t, 64, 0)
	_, err := AllocSlice[int64](a, 9)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	_, err = AllocSlice[int64](a, int(^uint(0)>>1))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, Markers{Rear: 64}, a.Markers())
}

func TestAllocAlignment(t *testing.T) {
	type align8 struct{ a int64 }
	type mixed struct {
		a int8
		b int64
	}

	for _, tier := range []PrimaryTier{PrimaryGlobal, PrimaryFront, PrimaryRear} {
		t.Run(tier.String(), func(t *testing.T) {
			a := newTestArena(t, 1024, 0)
			a.SetTier(tier)

			_, err := a.AllocPrimary(3) // knock the marker off alignment
			require.NoError(t, err)

			p1, err := Alloc[align8](a)
			require.NoError(t, err)
			p2, err := Alloc[mixed](a)
			require.NoError(t, err)
			p3, err := Alloc[int8](a)
			require.NoError(t, err)
			p4, err := Alloc[uint32](a)
			require.NoError(t, err)

			assert.Zero(t, uintptr(unsafe.Pointer(p1))%unsafe.Alignof(align8{}))
			assert.Zero(t, uintptr(unsafe.Pointer(p2))%unsafe.Alignof(mixed{}))
			assert.Zero(t, uintptr(unsafe.Pointer(p3))%unsafe.Alignof(int8(0)))
			assert.Zero(t, uintptr(unsafe.Pointer(p4))%unsafe.Alignof(uint32(0)))
			requireOrdered(t, a)
		})
	}
}

func TestAllocPointerTypesRejected(t *testing.T) {
	a := newTestArena(t, 1024, 1024)

	type withString struct{ name string }
	type withSlice struct{ data []byte }
	type nested struct {
		ok  [4]int32
		bad [1]*int
	}

	_, err := Alloc[*int](a)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = Alloc[withString](a)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = AllocSlice[withSlice](a, 4)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = AllocFrame[nested](a)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = AllocFrameNextSlice[map[int]int](a, 2)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = Alloc[any](a)
	assert.ErrorIs(t, err, ErrPointerType)

	assert.Equal(t, Markers{Rear: 1024, FrameRear: 1024}, a.Markers(), "rejections allocate nothing")
}

func TestHasPointers(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"int", 0, false},
		{"float array", [4]float64{}, false},
		{"empty array of pointers", [0]*int{}, false},
		{"struct of scalars", testStruct{}, false},
		{"uintptr", uintptr(0), false},
		{"string", "", true},
		{"pointer", new(int), true},
		{"func", func() {}, true},
		{"chan", make(chan int), true},
		{"struct with slice", struct{ b []byte }{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasPointers(reflectTypeOf(tt.v)))
		})
	}
}

func TestAllocZeroSizedType(t *testing.T) {
	a := newTestArena(t, 16, 0)
	p, err := Alloc[struct{}](a)
	require.NoError(t, err)
	assert.NotNil(t, p)
	s, err := AllocSlice[struct{}](a, 3)
	require.NoError(t, err)
	assert.Len(t, s, 3)
	assert.Equal(t, Markers{Rear: 16}, a.Markers())
}

func TestAllocFrameHelpers(t *testing.T) {
	a := newTestArena(t, 0, 256)

	cur, err := AllocFrame[int64](a)
	require.NoError(t, err)
	*cur = 7
	next, err := AllocFrameNext[int64](a)
	require.NoError(t, err)
	*next = 11

	m := a.Markers()
	assert.Equal(t, uint32(8), m.FrameFront)
	assert.Equal(t, uint32(248), m.FrameRear)

	list, err := AllocFrameSlice[uint16](a, 4)
	require.NoError(t, err)
	assert.Len(t, list, 4)
	carry, err := AllocFrameNextSlice[uint16](a, 4)
	require.NoError(t, err)
	assert.Len(t, carry, 4)

	a.SwapFrames()
	assert.Equal(t, int64(11), *next, "next-frame value survives one swap")
}

func TestConstructAndDestroyAt(t *testing.T) {
	v := testStruct{a: 1, b: 2}
	calls := 0
	p := ConstructAt(&v, func(s *testStruct) {
		calls++
		s.b = 9
	})
	assert.Same(t, &v, p)
	assert.Equal(t, testStruct{b: 9}, v, "zeroed before the constructor runs")

	DestroyAt(p, func(s *testStruct) { calls++ })
	DestroyAt[testStruct](p, nil)
	assert.Equal(t, 2, calls)

	ConstructAt[testStruct](p, nil)
	assert.Equal(t, testStruct{}, v)
}
