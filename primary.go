package arena

import (
	"log/slog"

	"github.com/cockroachdb/errors"
)

// AllocPrimary bumps the current Primary Stack tier by n bytes and returns
// the reserved window. The returned slice's capacity is clipped to n.
//
// On failure no marker moves: the error wraps ErrOutOfMemory (or
// ErrNotInitialized for an empty Primary Stack) and, in debug mode, the
// call panics instead of returning.
func (a *Arena) AllocPrimary(n uint64) ([]byte, error) {
	return a.allocPrimary(n, 1)
}

// allocPrimary is AllocPrimary with the start address rounded to align.
func (a *Arena) allocPrimary(n, align uint64) ([]byte, error) {
	a.panicIfShutDown()
	a.log.Debug("allocating primary", slog.Uint64("bytes", n), slog.String("tier", a.tier.String()))
	if a.primarySize == 0 {
		return nil, a.fail(errors.Wrap(ErrNotInitialized, "primary stack"),
			"primary stack has not been initialized")
	}

	base := baseOf(a.primary)
	var (
		start uint64
		ok    bool
	)
	switch a.tier {
	case PrimaryGlobal:
		if start, ok = bumpUp(base, a.global, a.rear, n, align); ok {
			a.global = start + n
			a.front = a.global
		}
	case PrimaryFront:
		if start, ok = bumpUp(base, a.front, a.rear, n, align); ok {
			a.front = start + n
		}
	case PrimaryRear:
		if start, ok = bumpDown(base, a.rear, a.front, n, align); ok {
			a.rear = start
		}
	default:
		return nil, a.fail(errors.Wrapf(ErrInvalidTier, "primary tier %d", uint8(a.tier)),
			"unsupported value for primary tier")
	}
	if !ok {
		err := errors.Wrapf(ErrOutOfMemory, "primary %s tier: %d bytes requested, %d free",
			a.tier, n, a.rear-a.front)
		return nil, a.fail(err, "cannot allocate from primary stack",
			slog.String("tier", a.tier.String()),
			slog.Uint64("bytes", n),
			slog.Uint64("global", a.global),
			slog.Uint64("front", a.front),
			slog.Uint64("rear", a.rear))
	}
	return a.primary[start : start+n : start+n], nil
}

// SetTier selects the tier AllocPrimary advances. Selecting PrimaryGlobal
// also discards every Front tier allocation; nothing may still reference
// Front tier memory when that happens. Unsupported values are logged and
// ignored.
func (a *Arena) SetTier(t PrimaryTier) {
	if !t.Valid() {
		a.log.Error("unsupported value for primary tier", slog.Int("tier", int(t)))
		return
	}
	a.log.Debug("changing primary stack tier", slog.String("tier", t.String()))
	a.tier = t
	if t == PrimaryGlobal {
		a.front = a.global
	}
}

// FreePrimaryFront reclaims the Front tier back down to the Global marker.
func (a *Arena) FreePrimaryFront() {
	a.log.Debug("freeing front tier of primary stack")
	a.front = a.global
}

// FreePrimaryRear reclaims the whole Rear tier.
func (a *Arena) FreePrimaryRear() {
	a.log.Debug("freeing rear tier of primary stack")
	a.rear = a.primarySize
}

// FreePrimaryToGlobal reclaims the Front and Rear tiers, keeping Global.
func (a *Arena) FreePrimaryToGlobal() {
	a.log.Debug("freeing front and rear tiers of primary stack")
	a.front = a.global
	a.rear = a.primarySize
}

// ClearPrimaryStack resets all three tiers, Global included. It is meant for
// full teardown or re-initialization only.
func (a *Arena) ClearPrimaryStack() {
	a.log.Debug("clearing primary stack")
	a.global = 0
	a.front = 0
	a.rear = a.primarySize
}
