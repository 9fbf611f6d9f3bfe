package arena

import (
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"
)

const maxInt = int(^uint(0) >> 1)

// Config sizes an arena. Sizes are fixed for the life of the arena.
type Config struct {
	// PrimarySize is the number of bytes in the Primary Stack.
	PrimarySize uint64
	// FrameSize is the number of bytes in the Frame Stack. Zero runs the
	// engine without per-frame scratch memory.
	FrameSize uint32
	// Debug turns capacity exhaustion and invalid pool releases into panics.
	Debug bool
	// Logger receives arena logs. Defaults to the package Logger.
	Logger *slog.Logger
	// OnOutOfMemory is called when the backing buffer cannot be reserved.
	// Defaults to DefaultOutOfMemoryHandler.
	OnOutOfMemory OutOfMemoryHandler
}

// Arena owns the backing buffer and the markers of both stacks.
// It is not safe for concurrent use; callers serialize access.
type Arena struct {
	buf     []byte
	release func() error
	closed  bool

	primary     []byte
	primarySize uint64
	global      uint64
	front       uint64
	rear        uint64
	tier        PrimaryTier

	frame      []byte
	frameSize  uint32
	frameFront uint32
	frameRear  uint32
	frameTier  FrameTier

	debug bool
	log   *slog.Logger
}

// Markers is a snapshot of every stack marker.
type Markers struct {
	Global     uint64
	Front      uint64
	Rear       uint64
	FrameFront uint32
	FrameRear  uint32
}

// StartUp reserves primarySize+frameSize contiguous bytes and splits them
// into the Primary and Frame stacks. The Primary Stack starts in the Global
// tier and the Frame Stack's current half is the front.
func StartUp(cfg Config) (*Arena, error) {
	log := cfg.Logger
	if log == nil {
		log = Logger
	}
	oom := cfg.OnOutOfMemory
	if oom == nil {
		oom = DefaultOutOfMemoryHandler(log)
	}

	log.Info("initializing memory stack",
		slog.Uint64("primary_size", cfg.PrimarySize),
		slog.Uint64("frame_size", uint64(cfg.FrameSize)))

	total := cfg.PrimarySize + uint64(cfg.FrameSize)
	if total < cfg.PrimarySize || total > uint64(maxInt) {
		err := errors.Wrapf(ErrOutOfMemory, "arena: %d+%d bytes is not addressable", cfg.PrimarySize, cfg.FrameSize)
		oom(err)
		return nil, err
	}
	buf, release, err := mapBacking(int(total))
	if err != nil {
		err = errors.Mark(err, ErrOutOfMemory)
		oom(err)
		return nil, err
	}

	a := &Arena{
		buf:         buf,
		release:     release,
		primary:     buf[:cfg.PrimarySize:cfg.PrimarySize],
		primarySize: cfg.PrimarySize,
		rear:        cfg.PrimarySize,
		tier:        PrimaryGlobal,
		frame:       buf[cfg.PrimarySize:],
		frameSize:   cfg.FrameSize,
		frameRear:   cfg.FrameSize,
		frameTier:   FrameFront,
		debug:       cfg.Debug,
		log:         log,
	}
	return a, nil
}

// ShutDown releases the backing buffer. Every slice, pointer and pool handed
// out by the arena is invalid afterwards.
func (a *Arena) ShutDown() error {
	if a.closed {
		return ErrShutDown
	}
	a.log.Info("shutting down memory stack")
	a.closed = true
	err := a.release()
	a.buf, a.primary, a.frame, a.release = nil, nil, nil, nil
	return err
}

// Tier returns the tier that AllocPrimary currently advances.
func (a *Arena) Tier() PrimaryTier { return a.tier }

// FrameTier returns the half of the Frame Stack that holds current-frame memory.
func (a *Arena) FrameTier() FrameTier { return a.frameTier }

// PrimarySize returns the total size of the Primary Stack.
func (a *Arena) PrimarySize() uint64 { return a.primarySize }

// PrimarySpace returns the bytes left between the Front and Rear markers.
func (a *Arena) PrimarySpace() uint64 { return a.rear - a.front }

// FrameSize returns the total size of the Frame Stack.
func (a *Arena) FrameSize() uint32 { return a.frameSize }

// FrameSpace returns the bytes left between the two Frame Stack markers.
func (a *Arena) FrameSpace() uint32 { return a.frameRear - a.frameFront }

// Debug reports whether exhaustion panics.
func (a *Arena) Debug() bool { return a.debug }

// Markers returns the current value of every marker.
func (a *Arena) Markers() Markers {
	return Markers{
		Global:     a.global,
		Front:      a.front,
		Rear:       a.rear,
		FrameFront: a.frameFront,
		FrameRear:  a.frameRear,
	}
}

// PrimaryOffset returns the offset of b within the Primary Stack.
// Zero-length slices have no defined address.
func (a *Arena) PrimaryOffset(b []byte) (uint64, bool) {
	return offsetIn(a.primary, b)
}

// FrameOffset returns the offset of b within the Frame Stack.
// Zero-length slices have no defined address.
func (a *Arena) FrameOffset(b []byte) (uint64, bool) {
	return offsetIn(a.frame, b)
}

func offsetIn(region, b []byte) (uint64, bool) {
	if len(region) == 0 || len(b) == 0 {
		return 0, false
	}
	lo := uintptr(unsafe.Pointer(unsafe.SliceData(region)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if p < lo {
		return 0, false
	}
	off := p - lo
	if off >= uintptr(len(region)) || uintptr(len(b)) > uintptr(len(region))-off {
		return 0, false
	}
	return uint64(off), true
}

func (a *Arena) panicIfShutDown() {
	if a.closed {
		panic(ErrShutDown)
	}
}

// fail logs err and returns it; in debug mode it halts instead.
func (a *Arena) fail(err error, msg string, attrs ...any) error {
	a.log.Error(msg, append(attrs, slog.Any("err", err))...)
	if a.debug {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "arena: %s", msg))
	}
	return err
}
