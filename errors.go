package arena

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory indicates that a stack tier has no room for the request.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrNotInitialized indicates an allocation from a stack of size zero.
	ErrNotInitialized = errors.New("arena: stack not initialized")

	// ErrInvalidTier indicates a tier value outside the supported set.
	ErrInvalidTier = errors.New("arena: unsupported tier")

	// ErrShutDown indicates use of an arena after ShutDown.
	ErrShutDown = errors.New("arena: use after ShutDown")

	// ErrPointerType indicates a typed allocation of a type that holds Go pointers.
	// Arena memory is invisible to the garbage collector.
	ErrPointerType = errors.New("arena: type contains pointers")

	// ErrPoolExhausted indicates that every slot of a pool is in use.
	ErrPoolExhausted = errors.New("arena: pool exhausted")

	// ErrBadPointer indicates a release of a pointer that is not a pool slot.
	ErrBadPointer = errors.New("arena: pointer does not fall within the pool")

	// ErrNotAllocated indicates a release of a pool slot that is already free.
	ErrNotAllocated = errors.New("arena: pool slot is not allocated")
)
