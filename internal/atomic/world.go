package atomic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/kamstrup/intmap"
)

// Stats summarizes the most recent Step.
type Stats struct {
	Collisions int
	Links      int
	Bursting   int
	MeanSpeed  float64
}

// World is the ordered particle collection plus the per-tick dynamics.
type World struct {
	cfg       Config
	particles []Particle

	// Per-tick transient sets keyed by particle index. Cleared at the
	// start of every Step, never read across ticks.
	collided []*intmap.Set[int]
	linked   []*intmap.Set[int]

	stats Stats
	ticks int
}

// New builds cfg.ParticleCount particles with uniform random positions in
// [0,Width)x[0,Height) and velocity components in [0,MaxSpeed).
func New(cfg Config, rng *rand.Rand) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ps := make([]Particle, cfg.ParticleCount)
	for i := range ps {
		ps[i] = Particle{
			Pos: Vec2{rng.Float64() * cfg.Width, rng.Float64() * cfg.Height},
			Vel: Vec2{rng.Float64() * cfg.MaxSpeed, rng.Float64() * cfg.MaxSpeed},
		}
	}
	return newWorld(cfg, ps), nil
}

// FromParticles builds a World from explicit particle state. The slice is
// copied. len(ps) must equal cfg.ParticleCount.
func FromParticles(cfg Config, ps []Particle) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(ps) != cfg.ParticleCount {
		return nil, fmt.Errorf("%w: config wants %d, got %d", ErrParticleCount, cfg.ParticleCount, len(ps))
	}
	own := make([]Particle, len(ps))
	copy(own, ps)
	return newWorld(cfg, own), nil
}

func newWorld(cfg Config, ps []Particle) *World {
	w := &World{
		cfg:       cfg,
		particles: ps,
		collided:  make([]*intmap.Set[int], len(ps)),
		linked:    make([]*intmap.Set[int], len(ps)),
	}
	for i := range ps {
		w.collided[i] = intmap.NewSet[int](4)
		w.linked[i] = intmap.NewSet[int](16)
	}
	return w
}

func (w *World) Config() Config { return w.cfg }
func (w *World) Len() int       { return len(w.particles) }
func (w *World) Stats() Stats   { return w.stats }
func (w *World) Ticks() int     { return w.ticks }

// Particle returns a copy of particle i.
func (w *World) Particle(i int) Particle { return w.particles[i] }

// Particles returns a copy of every particle, in index order.
func (w *World) Particles() []Particle {
	out := make([]Particle, len(w.particles))
	copy(out, w.particles)
	return out
}

// Step advances the world by one tick of length dt and returns the tick's
// draw commands: every link first, then one disc per particle.
func (w *World) Step(dt float64, ptr PointerSample) []DrawCommand {
	w.stats = Stats{}
	w.clearTransients()
	w.applyPointer(ptr)
	w.resolveCollisions()

	cmds := make([]DrawCommand, 0, 2*len(w.particles))
	cmds = w.appendLinks(cmds)
	cmds = w.integrate(dt, cmds)

	w.ticks++
	return cmds
}

func (w *World) clearTransients() {
	for i := range w.particles {
		w.collided[i].Clear()
		w.linked[i].Clear()
	}
}

// applyPointer snaps velocities away from an active pointer and arms the
// burst state on a pending burst. The sample is a value, so a burst is
// seen by every particle of this tick and by no later tick.
func (w *World) applyPointer(ptr PointerSample) {
	repel := ptr.Active || !w.cfg.PointerRequiresMotion
	for i := range w.particles {
		p := &w.particles[i]
		rel := ptr.Pos.Sub(p.Pos)
		dist := rel.Len()

		if repel && dist <= w.cfg.PointerInfluenceRadius {
			p.Vel = polar(w.cfg.PointerInfluenceSpeed, rel.Angle()).Scale(-1)
		}
		if ptr.BurstPending && dist <= w.cfg.PointerBurstRadius {
			p.Accel = w.cfg.MaxBurstAccel
			p.Accelerating = true
		}
	}
}

// resolveCollisions scans all ordered pairs in collection order. A pair is
// skipped when the partner already resolved it this tick.
func (w *World) resolveCollisions() {
	r := w.cfg.Radius
	for i := range w.particles {
		self := &w.particles[i]
		for j := range w.particles {
			if j == i || w.collided[j].Has(i) {
				continue
			}
			partner := &w.particles[j]
			contact, ok := self.Contact(partner, r)
			if !ok {
				continue
			}
			w.collided[i].Add(j)

			avg := (self.Speed() + partner.Speed()) / 2
			dir := contact.Offset.Scale(1 / r)
			self.Vel = dir.Scale(-avg)
			partner.Vel = dir.Scale(avg)
			w.stats.Collisions++
		}
	}
}

func (w *World) appendLinks(cmds []DrawCommand) []DrawCommand {
	r, maxDist := w.cfg.Radius, w.cfg.LinkDistance
	for i := range w.particles {
		self := &w.particles[i]
		for j := range w.particles {
			if j == i || w.linked[j].Has(i) {
				continue
			}
			link, ok := self.LinkTo(&w.particles[j], r, maxDist)
			if !ok {
				continue
			}
			w.linked[i].Add(j)
			cmds = append(cmds, DrawCommand{
				Kind:  DrawLink,
				From:  link.From,
				To:    link.To,
				Color: w.cfg.LinkColor.WithAlpha(w.linkAlpha(link.Distance)),
			})
			w.stats.Links++
		}
	}
	return cmds
}

// linkAlpha fades linearly from the link color's alpha at distance 0 to
// zero at LinkDistance.
func (w *World) linkAlpha(dist float64) float64 {
	if w.cfg.LinkDistance <= 0 {
		return 0
	}
	return w.cfg.LinkColor.A * (1 - dist/w.cfg.LinkDistance)
}

func (w *World) integrate(dt float64, cmds []DrawCommand) []DrawCommand {
	overspeed := w.cfg.OverspeedThreshold()
	speedSum := 0.0
	for i := range w.particles {
		p := &w.particles[i]

		if p.Accelerating {
			p.Vel = p.Vel.Add(polar(p.Accel, p.Vel.Angle()).Scale(dt))
			if p.Accel > -w.cfg.MaxBurstAccel {
				p.Accel -= dt * w.cfg.AccelDecayRate
			} else {
				p.Accelerating = false
				p.Accel = 0
			}
		}
		// Re-arms the decay cycle; does not cap the speed.
		if p.Speed() > overspeed {
			p.Accelerating = true
			p.Accel = 0
		}

		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		w.reflect(p)

		if p.Accelerating {
			w.stats.Bursting++
		}
		speedSum += p.Speed()

		cmds = append(cmds, DrawCommand{
			Kind:   DrawAtom,
			Center: p.Pos,
			Radius: w.cfg.Radius,
			Color:  w.cfg.AtomColor,
		})
	}
	if n := len(w.particles); n > 0 {
		w.stats.MeanSpeed = speedSum / float64(n)
	}
	return cmds
}

// reflect flips an outward velocity component once the rim reaches a
// bound. Position is not corrected.
func (w *World) reflect(p *Particle) {
	r := w.cfg.Radius
	if p.Pos.X+r >= w.cfg.Width && p.Vel.X > 0 {
		p.Vel.X = -p.Vel.X
	}
	if p.Pos.X-r <= 0 && p.Vel.X < 0 {
		p.Vel.X = -p.Vel.X
	}
	if p.Pos.Y+r >= w.cfg.Height && p.Vel.Y > 0 {
		p.Vel.Y = -p.Vel.Y
	}
	if p.Pos.Y-r <= 0 && p.Vel.Y < 0 {
		p.Vel.Y = -p.Vel.Y
	}
}

// MaxOvershoot bounds how far a disc can leave the world in one tick
// given the largest current speed.
func (w *World) MaxOvershoot(dt float64) float64 {
	peak := 0.0
	for i := range w.particles {
		peak = math.Max(peak, w.particles[i].Speed())
	}
	return peak * dt
}
