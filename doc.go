// Package arena implements the engine's memory arena: every byte the engine
// uses after start-up comes from one buffer reserved by StartUp.
//
// # Overview
//
// The buffer is split into two stacks:
//
//   - The Primary Stack, a double-ended bump allocator with three tiers.
//     Global grows forward from offset 0 and is never reclaimed until the
//     stack is cleared. Front grows forward after Global and can be freed
//     back down to it. Rear grows backward from the end of the stack and
//     can be freed on its own.
//   - The Frame Stack, a double-ended bump allocator whose two halves take
//     turns holding "current" and "next" frame memory.
//
// Pools carve a fixed slot array out of the Primary Stack and hand out
// same-typed values that can be released one by one.
//
//	Primary Stack:
//	    [--GLOBAL--][----FRONT----][xxxxxxEMPTYxxxxxx][----REAR----]
//	               ^              ^                   ^
//	             global         front                rear
//
//	Frame Stack:
//	    [------FRONT------][xxxxxxxEMPTYxxxxxxx][------REAR------]
//	                      ^                     ^
//	                 frameFront             frameRear
//
// # Basic Usage
//
//	a, err := arena.StartUp(arena.Config{PrimarySize: 1 << 20, FrameSize: 64 << 10})
//	if err != nil {
//	    return err
//	}
//	defer a.ShutDown()
//
//	// Permanent assets
//	menu, err := arena.Alloc[MenuState](a)
//
//	// Level assets, freed when the level unloads
//	a.SetTier(arena.PrimaryFront)
//	verts, err := arena.AllocSlice[Vertex](a, 4096)
//	...
//	a.FreePrimaryFront()
//
//	// Per-frame scratch
//	for running {
//	    scratch, _ := a.AllocFrameCurrent(512)
//	    carry, _ := arena.AllocFrameNext[Carry](a)
//	    ...
//	    a.SwapFrames()
//	}
//
// # Frame Lifetimes
//
// SwapFrames empties the half that held current-frame memory and promotes
// the other half. Memory allocated with the "next" calls during frame N is
// current during frame N+1 and gone after the swap that ends N+1. Data that
// must live longer has to be copied into a fresh "next" allocation every
// frame.
//
// # Failure
//
// A failed allocation returns an error wrapping ErrOutOfMemory and leaves
// every marker where it was. Exhaustion is a sizing bug: with Config.Debug
// set the arena panics instead of returning.
//
// # Monitoring
//
// Metrics returns a snapshot of every marker and Print logs it. Package
// arenaprom exports the same numbers, plus pool occupancy, as Prometheus
// gauges. The arenasim command runs a scripted game loop against an arena
// and prints both.
//
// # Important Notes
//
//   - The arena is not thread-safe. Allocate from one goroutine per stack at
//     a time, or put a single lock around the whole arena.
//   - Arena memory is not scanned by the garbage collector. Typed helpers and
//     pools reject element types that contain Go pointers.
//   - Byte allocations bump exactly n bytes. Typed helpers pad to the
//     type's alignment first.
//   - Nothing handed out by the arena is valid after ShutDown.
package arena
