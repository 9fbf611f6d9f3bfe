package arena

import (
	"log/slog"

	"github.com/cockroachdb/errors"
)

// AllocFrameCurrent reserves n bytes valid until the next SwapFrames.
func (a *Arena) AllocFrameCurrent(n uint32) ([]byte, error) {
	return a.allocFrame(a.frameTier, n, 1)
}

// AllocFrameNext reserves n bytes that survive exactly one SwapFrames: they
// become current-frame memory after the next swap and are reclaimed by the
// swap after that.
func (a *Arena) AllocFrameNext(n uint32) ([]byte, error) {
	return a.allocFrame(a.frameTier.Opposite(), n, 1)
}

func (a *Arena) allocFrame(side FrameTier, n, align uint32) ([]byte, error) {
	a.panicIfShutDown()
	role := "next"
	if side == a.frameTier {
		role = "current"
	}
	a.log.Debug("allocating frame", slog.Uint64("bytes", uint64(n)), slog.String("frame", role))
	if a.frameSize == 0 {
		return nil, a.fail(errors.Wrap(ErrNotInitialized, "frame stack"),
			"frame stack has not been initialized")
	}

	base := baseOf(a.frame)
	var (
		start uint64
		ok    bool
	)
	switch side {
	case FrameFront:
		if start, ok = bumpUp(base, uint64(a.frameFront), uint64(a.frameRear), uint64(n), uint64(align)); ok {
			a.frameFront = uint32(start) + n
		}
	case FrameRear:
		if start, ok = bumpDown(base, uint64(a.frameRear), uint64(a.frameFront), uint64(n), uint64(align)); ok {
			a.frameRear = uint32(start)
		}
	default:
		return nil, a.fail(errors.Wrapf(ErrInvalidTier, "frame tier %d", uint8(side)),
			"unsupported value for frame tier")
	}
	if !ok {
		err := errors.Wrapf(ErrOutOfMemory, "frame %s half (%s): %d bytes requested, %d free",
			side, role, n, a.frameRear-a.frameFront)
		return nil, a.fail(err, "cannot allocate from frame stack",
			slog.String("frame", role),
			slog.Uint64("bytes", uint64(n)),
			slog.Uint64("front", uint64(a.frameFront)),
			slog.Uint64("rear", uint64(a.frameRear)))
	}
	return a.frame[start : start+uint64(n) : start+uint64(n)], nil
}

// SwapFrames ends the current frame: the half that held current-frame memory
// is emptied and the other half, holding what was allocated as "next",
// becomes current. Nothing allocated as current survives a swap. With a zero
// sized Frame Stack this does nothing.
func (a *Arena) SwapFrames() {
	if a.frameSize == 0 {
		return
	}
	a.log.Debug("swapping frames in frame stack")
	switch a.frameTier {
	case FrameFront:
		a.frameFront = 0
		a.frameTier = FrameRear
	case FrameRear:
		a.frameRear = a.frameSize
		a.frameTier = FrameFront
	default:
		a.log.Error("unsupported value for frame tier", slog.Int("tier", int(a.frameTier)))
	}
}

// ClearFrameStack empties both halves of the Frame Stack.
func (a *Arena) ClearFrameStack() {
	a.log.Debug("clearing frame stack")
	a.frameFront = 0
	a.frameRear = a.frameSize
}
