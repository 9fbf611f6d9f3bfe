package main

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	arena "github.com/pavanmanishd/framearena"
)

// particle lives in a Global tier pool so it survives level changes.
type particle struct {
	X, Y   float32
	VX, VY float32
	Life   uint16
}

// debris lives in a per-level pool in the Front tier.
type debris struct {
	X, Y  float32
	Spin  float32
	Level uint16
}

type vertex struct {
	X, Y, Z float32
}

// frameState is carried from one frame to the next through the Frame Stack.
type frameState struct {
	Frame  int64
	Alive  uint32
	Energy float32
}

const (
	atlasEntries   = 4096
	scratchFloats  = 256
	vertsPerLevel  = 1024
	debrisInterval = 8
)

// summary describes what a simulation did.
type summary struct {
	Levels          int
	Frames          int
	Spawned         uint64
	Despawned       uint64
	PeakParticles   uint32
	PeakPrimaryUsed uint64
	PeakFrameUsed   uint32
}

// world holds the data loaded once for the whole run.
type world struct {
	a         *arena.Arena
	log       *slog.Logger
	atlas     []uint32
	particles *arena.Pool[particle]
	live      []*particle
	sum       summary
}

// newWorld loads the assets every level shares into the Global tier.
func newWorld(a *arena.Arena, cfg simConfig, log *slog.Logger) (*world, error) {
	a.SetTier(arena.PrimaryGlobal)

	atlas, err := arena.AllocSlice[uint32](a, atlasEntries)
	if err != nil {
		return nil, errors.Wrap(err, "loading texture atlas")
	}
	for i := range atlas {
		atlas[i] = uint32(i) * 2654435761
	}

	particles, err := arena.NewPool[particle](a, cfg.Particles)
	if err != nil {
		return nil, errors.Wrap(err, "creating particle pool")
	}
	log.Info("loaded global assets",
		slog.Int("atlas_entries", len(atlas)),
		slog.Uint64("particle_slots", uint64(particles.Cap())))

	return &world{
		a:         a,
		log:       log,
		atlas:     atlas,
		particles: particles,
		live:      make([]*particle, 0, particles.Cap()),
	}, nil
}

// playLevel loads a level into the Front tier, runs frames frames and then
// discards everything the level allocated.
func (w *world) playLevel(level, frames int) error {
	a := w.a
	a.SetTier(arena.PrimaryFront)

	verts, err := arena.AllocSliceZeroed[vertex](a, vertsPerLevel*(level+1))
	if err != nil {
		return errors.Wrapf(err, "level %d: allocating geometry", level)
	}
	if err := w.stageGeometry(level, verts); err != nil {
		return err
	}

	debrisPool, err := arena.NewPool[debris](a, 0,
		arena.WithConstructor(func(d *debris) { d.Level = uint16(level) }))
	if err != nil {
		return errors.Wrapf(err, "level %d: creating debris pool", level)
	}
	var pieces []*debris

	state, err := arena.AllocFrame[frameState](a)
	if err != nil {
		return errors.Wrapf(err, "level %d: allocating frame state", level)
	}

	for f := 0; f < frames; f++ {
		scratch, err := arena.AllocFrameSlice[float32](a, scratchFloats)
		if err != nil {
			return errors.Wrapf(err, "level %d frame %d: allocating scratch", level, f)
		}
		var energy float32
		for i := range scratch {
			scratch[i] = float32((f*i + int(w.atlas[i%len(w.atlas)])) % 17)
			energy += scratch[i]
		}

		if err := w.spawn(f); err != nil {
			return errors.Wrapf(err, "level %d frame %d", level, f)
		}
		if err := w.age(); err != nil {
			return errors.Wrapf(err, "level %d frame %d", level, f)
		}

		if f%debrisInterval == 0 && debrisPool.Free() > 0 {
			d, err := debrisPool.Add()
			if err != nil {
				return errors.Wrapf(err, "level %d frame %d: adding debris", level, f)
			}
			d.X, d.Y, d.Spin = verts[f%len(verts)].X, verts[f%len(verts)].Y, energy
			pieces = append(pieces, d)
		}

		next, err := arena.AllocFrameNext[frameState](a)
		if err != nil {
			return errors.Wrapf(err, "level %d frame %d: allocating next state", level, f)
		}
		next.Frame = state.Frame + 1
		next.Alive = w.particles.InUse()
		next.Energy = state.Energy*0.5 + energy

		w.observe()
		a.SwapFrames()
		state = next
		w.sum.Frames++
	}

	for _, d := range pieces {
		if err := debrisPool.Remove(d); err != nil {
			return errors.Wrapf(err, "level %d: removing debris", level)
		}
	}
	if err := w.despawnAll(); err != nil {
		return errors.Wrapf(err, "level %d", level)
	}

	w.log.Info("finished level",
		slog.Int("level", level),
		slog.Int64("frames", state.Frame),
		slog.Float64("energy", float64(state.Energy)))
	a.FreePrimaryFront()
	w.sum.Levels++
	return nil
}

// stageGeometry decodes level data into a Rear tier staging buffer, copies
// it into verts and drops the staging buffer.
func (w *world) stageGeometry(level int, verts []vertex) error {
	a := w.a
	a.SetTier(arena.PrimaryRear)
	defer a.SetTier(arena.PrimaryFront)

	staging, err := arena.AllocSlice[vertex](a, len(verts))
	if err != nil {
		return errors.Wrapf(err, "level %d: allocating staging buffer", level)
	}
	for i := range staging {
		staging[i] = vertex{X: float32(i), Y: float32(level), Z: float32(i % 7)}
	}
	copy(verts, staging)
	w.observe()
	a.FreePrimaryRear()
	return nil
}

// spawn adds up to 1+f%4 particles while the pool has room.
func (w *world) spawn(f int) error {
	for i := 0; i < 1+f%4 && w.particles.Free() > 0; i++ {
		p, err := w.particles.Add()
		if err != nil {
			return errors.Wrap(err, "spawning particle")
		}
		p.VX, p.VY = float32(i), float32(f%3)
		p.Life = uint16(2 + (f+i)%5)
		w.live = append(w.live, p)
		w.sum.Spawned++
	}
	if n := w.particles.InUse(); n > w.sum.PeakParticles {
		w.sum.PeakParticles = n
	}
	return nil
}

// age moves every live particle and removes the ones that expired.
func (w *world) age() error {
	kept := w.live[:0]
	for _, p := range w.live {
		p.X += p.VX
		p.Y += p.VY
		p.Life--
		if p.Life > 0 {
			kept = append(kept, p)
			continue
		}
		if err := w.particles.Remove(p); err != nil {
			return errors.Wrap(err, "despawning particle")
		}
		w.sum.Despawned++
	}
	w.live = kept
	return nil
}

func (w *world) despawnAll() error {
	for _, p := range w.live {
		if err := w.particles.Remove(p); err != nil {
			return errors.Wrap(err, "despawning particle")
		}
		w.sum.Despawned++
	}
	w.live = w.live[:0]
	return nil
}

func (w *world) observe() {
	m := w.a.Metrics()
	if m.PrimaryUsed > w.sum.PeakPrimaryUsed {
		w.sum.PeakPrimaryUsed = m.PrimaryUsed
	}
	if m.FrameUsed > w.sum.PeakFrameUsed {
		w.sum.PeakFrameUsed = m.FrameUsed
	}
}

// simulate plays cfg.Levels levels of cfg.Frames frames each.
func simulate(a *arena.Arena, cfg simConfig, log *slog.Logger) (*world, error) {
	w, err := newWorld(a, cfg, log)
	if err != nil {
		return nil, err
	}
	for level := 0; level < cfg.Levels; level++ {
		if err := w.playLevel(level, cfg.Frames); err != nil {
			return w, err
		}
	}
	return w, nil
}
