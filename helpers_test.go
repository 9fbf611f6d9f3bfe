package arena

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// newTestArena starts an arena that is shut down when the test ends.
func newTestArena(t testing.TB, primary uint64, frame uint32) *Arena {
	t.Helper()
	a, err := StartUp(Config{PrimarySize: primary, FrameSize: frame})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.ShutDown() })
	return a
}

// newDebugArena is newTestArena with exhaustion turned into panics.
func newDebugArena(t testing.TB, primary uint64, frame uint32) *Arena {
	t.Helper()
	a, err := StartUp(Config{PrimarySize: primary, FrameSize: frame, Debug: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.ShutDown() })
	return a
}

func primaryOffset(t testing.TB, a *Arena, b []byte) uint64 {
	t.Helper()
	off, ok := a.PrimaryOffset(b)
	require.True(t, ok, "slice should lie inside the primary stack")
	return off
}

func frameOffset(t testing.TB, a *Arena, b []byte) uint64 {
	t.Helper()
	off, ok := a.FrameOffset(b)
	require.True(t, ok, "slice should lie inside the frame stack")
	return off
}

// requireOrdered checks 0 <= global <= front <= rear <= size for the Primary
// Stack and front <= rear <= size for the Frame Stack.
func requireOrdered(t testing.TB, a *Arena) {
	t.Helper()
	m := a.Markers()
	require.LessOrEqual(t, m.Global, m.Front, "global <= front")
	require.LessOrEqual(t, m.Front, m.Rear, "front <= rear")
	require.LessOrEqual(t, m.Rear, a.PrimarySize(), "rear <= size")
	require.LessOrEqual(t, m.FrameFront, m.FrameRear, "frame front <= frame rear")
	require.LessOrEqual(t, m.FrameRear, a.FrameSize(), "frame rear <= size")
}

func reflectTypeOf(v any) reflect.Type { return reflect.TypeOf(v) }

// unsafeBytes views the memory of *v as a byte slice.
func unsafeBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}
