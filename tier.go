package arena

// PrimaryTier selects which marker of the Primary Stack an allocation advances.
type PrimaryTier uint8

const (
	// PrimaryGlobal grows forward from offset 0 and is only reclaimed by
	// ClearPrimaryStack. Global growth also advances the Front marker.
	PrimaryGlobal PrimaryTier = iota
	// PrimaryFront grows forward from the Global marker and can be reclaimed
	// back down to it.
	PrimaryFront
	// PrimaryRear grows backward from the end of the Primary Stack.
	PrimaryRear
)

func (t PrimaryTier) String() string {
	switch t {
	case PrimaryGlobal:
		return "global"
	case PrimaryFront:
		return "front"
	case PrimaryRear:
		return "rear"
	default:
		return "invalid"
	}
}

// Valid reports whether t names one of the three Primary Stack tiers.
func (t PrimaryTier) Valid() bool {
	return t <= PrimaryRear
}

// FrameTier names one physical half of the Frame Stack. Each half alternates
// between holding "current" and "next" frame memory.
type FrameTier uint8

const (
	FrameFront FrameTier = iota
	FrameRear
)

func (t FrameTier) String() string {
	switch t {
	case FrameFront:
		return "front"
	case FrameRear:
		return "rear"
	default:
		return "invalid"
	}
}

// Opposite returns the other half of the Frame Stack.
func (t FrameTier) Opposite() FrameTier {
	if t == FrameFront {
		return FrameRear
	}
	return FrameFront
}
