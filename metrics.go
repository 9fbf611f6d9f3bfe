package arena

import (
	"log/slog"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Metrics is a snapshot of how both stacks are divided up.
type Metrics struct {
	PrimarySize uint64      // Total Primary Stack bytes
	GlobalUsed  uint64      // Bytes held by the Global tier
	FrontUsed   uint64      // Bytes held by the Front tier
	RearUsed    uint64      // Bytes held by the Rear tier
	PrimaryUsed uint64      // Global + Front + Rear
	PrimaryFree uint64      // Bytes between the Front and Rear markers
	Tier        PrimaryTier // Tier AllocPrimary advances

	FrameSize      uint32    // Total Frame Stack bytes
	FrameFrontUsed uint32    // Bytes held by the front half
	FrameRearUsed  uint32    // Bytes held by the rear half
	FrameUsed      uint32    // Front + rear
	FrameFree      uint32    // Bytes between the two frame markers
	FrameTier      FrameTier // Half holding current-frame memory
}

// Metrics returns a snapshot of the arena's markers.
func (a *Arena) Metrics() Metrics {
	m := Metrics{
		PrimarySize:    a.primarySize,
		GlobalUsed:     a.global,
		FrontUsed:      a.front - a.global,
		RearUsed:       a.primarySize - a.rear,
		PrimaryFree:    a.rear - a.front,
		Tier:           a.tier,
		FrameSize:      a.frameSize,
		FrameFrontUsed: a.frameFront,
		FrameRearUsed:  a.frameSize - a.frameRear,
		FrameFree:      a.frameRear - a.frameFront,
		FrameTier:      a.frameTier,
	}
	m.PrimaryUsed = m.GlobalUsed + m.FrontUsed + m.RearUsed
	m.FrameUsed = m.FrameFrontUsed + m.FrameRearUsed
	return m
}

// Utilization returns the used fraction of the Primary Stack (0.0 to 1.0).
func (m Metrics) Utilization() float64 {
	if m.PrimarySize == 0 {
		return 0
	}
	return float64(m.PrimaryUsed) / float64(m.PrimarySize)
}

// FrameUtilization returns the used fraction of the Frame Stack (0.0 to 1.0).
func (m Metrics) FrameUtilization() float64 {
	if m.FrameSize == 0 {
		return 0
	}
	return float64(m.FrameUsed) / float64(m.FrameSize)
}

// Print logs the used and free bytes of every region to l, or to the
// arena's logger if l is nil, and returns the snapshot it logged.
func (a *Arena) Print(l *slog.Logger) Metrics {
	if l == nil {
		l = a.log
	}
	m := a.Metrics()
	l.Info("memory stacks",
		slog.Group("primary",
			slog.Uint64("total_size", m.PrimarySize),
			slog.Uint64("global", m.GlobalUsed),
			slog.Uint64("front", m.FrontUsed),
			slog.Uint64("rear", m.RearUsed),
			slog.Uint64("used", m.PrimaryUsed),
			slog.Uint64("free", m.PrimaryFree),
			slog.String("tier", m.Tier.String())),
		slog.Group("frame",
			slog.Uint64("total_size", uint64(m.FrameSize)),
			slog.Uint64("front", uint64(m.FrameFrontUsed)),
			slog.Uint64("rear", uint64(m.FrameRearUsed)),
			slog.Uint64("used", uint64(m.FrameUsed)),
			slog.Uint64("free", uint64(m.FrameFree)),
			slog.String("current", m.FrameTier.String())))
	return m
}

// WriteJSON writes m as a JSON object.
func (m Metrics) WriteJSON(w *jwriter.Writer) {
	obj := w.Object()
	p := obj.Name("primary").Object()
	p.Name("totalSize").Int(int(m.PrimarySize))
	p.Name("global").Int(int(m.GlobalUsed))
	p.Name("front").Int(int(m.FrontUsed))
	p.Name("rear").Int(int(m.RearUsed))
	p.Name("used").Int(int(m.PrimaryUsed))
	p.Name("free").Int(int(m.PrimaryFree))
	p.Name("tier").String(m.Tier.String())
	p.End()
	f := obj.Name("frame").Object()
	f.Name("totalSize").Int(int(m.FrameSize))
	f.Name("front").Int(int(m.FrameFrontUsed))
	f.Name("rear").Int(int(m.FrameRearUsed))
	f.Name("used").Int(int(m.FrameUsed))
	f.Name("free").Int(int(m.FrameFree))
	f.Name("current").String(m.FrameTier.String())
	f.End()
	obj.End()
}

// MarshalJSON implements json.Marshaler.
func (m Metrics) MarshalJSON() ([]byte, error) {
	w := jwriter.NewWriter()
	m.WriteJSON(&w)
	return w.Bytes(), w.Error()
}

// PoolStats is a snapshot of a pool's occupancy.
type PoolStats struct {
	Capacity uint32 // Number of slots
	InUse    uint32 // Occupied slots
	Free     uint32 // Slots on the free list
	SlotSize uint64 // Bytes per slot
	ByteSize uint64 // Bytes reserved for all slots
}

// WriteJSON writes s as a JSON object.
func (s PoolStats) WriteJSON(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("capacity").Int(int(s.Capacity))
	obj.Name("inUse").Int(int(s.InUse))
	obj.Name("free").Int(int(s.Free))
	obj.Name("slotSize").Int(int(s.SlotSize))
	obj.Name("byteSize").Int(int(s.ByteSize))
	obj.End()
}

// MarshalJSON implements json.Marshaler.
func (s PoolStats) MarshalJSON() ([]byte, error) {
	w := jwriter.NewWriter()
	s.WriteJSON(&w)
	return w.Bytes(), w.Error()
}
