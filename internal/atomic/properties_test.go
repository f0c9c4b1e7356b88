package atomic_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/atomsim/internal/atomic"
)

const dt = 0.1

func worldOf(cfg atomic.Config, ps ...atomic.Particle) *atomic.World {
	cfg.ParticleCount = len(ps)
	w, err := atomic.FromParticles(cfg, ps)
	Expect(err).NotTo(HaveOccurred())
	return w
}

func links(cmds []atomic.DrawCommand) []atomic.DrawCommand {
	var out []atomic.DrawCommand
	for _, c := range cmds {
		if c.Kind == atomic.DrawLink {
			out = append(out, c)
		}
	}
	return out
}

var _ = Describe("World", func() {
	var cfg atomic.Config

	BeforeEach(func() {
		cfg = atomic.DefaultConfig()
		cfg.MaxSpeed = 10
	})

	Describe("boundary containment", func() {
		It("keeps every particle within one step of the bounds", func() {
			cfg.ParticleCount = 40
			w, err := atomic.New(cfg, rand.New(rand.NewSource(42)))
			Expect(err).NotTo(HaveOccurred())

			for tick := 0; tick < 2000; tick++ {
				w.Step(dt, atomic.PointerSample{})
				tol := 2*w.MaxOvershoot(dt) + 1e-9
				for _, p := range w.Particles() {
					Expect(p.Pos.X).To(BeNumerically(">=", -tol))
					Expect(p.Pos.X).To(BeNumerically("<=", cfg.Width+tol))
					Expect(p.Pos.Y).To(BeNumerically(">=", -tol))
					Expect(p.Pos.Y).To(BeNumerically("<=", cfg.Height+tol))
				}
			}
		})
	})

	Describe("collision symmetry", func() {
		It("resolves a touching pair once at the average speed", func() {
			w := worldOf(cfg,
				atomic.Particle{Pos: atomic.Vec2{X: 100, Y: 100}, Vel: atomic.Vec2{X: 2, Y: 1}},
				atomic.Particle{Pos: atomic.Vec2{X: 104, Y: 100}, Vel: atomic.Vec2{X: -3, Y: 4}},
			)
			before := w.Particles()
			avg := (before[0].Speed() + before[1].Speed()) / 2

			w.Step(dt, atomic.PointerSample{})

			Expect(w.Stats().Collisions).To(Equal(1))
			a, b := w.Particle(0), w.Particle(1)
			Expect(a.Speed()).To(BeNumerically("~", avg, 1e-9))
			Expect(b.Speed()).To(BeNumerically("~", avg, 1e-9))
			Expect(a.Vel.X).To(BeNumerically("~", -b.Vel.X, 1e-12))
			Expect(a.Vel.Y).To(BeNumerically("~", -b.Vel.Y, 1e-12))
		})
	})

	Describe("link dedup", func() {
		It("emits exactly one link per in-range pair per tick", func() {
			w := worldOf(cfg,
				atomic.Particle{Pos: atomic.Vec2{X: 100, Y: 100}},
				atomic.Particle{Pos: atomic.Vec2{X: 160, Y: 100}},
				atomic.Particle{Pos: atomic.Vec2{X: 130, Y: 150}},
				atomic.Particle{Pos: atomic.Vec2{X: 700, Y: 500}},
			)

			for tick := 0; tick < 5; tick++ {
				Expect(links(w.Step(dt, atomic.PointerSample{}))).To(HaveLen(3))
			}
		})
	})

	Describe("link alpha", func() {
		It("decreases with distance and reaches zero at the link distance", func() {
			prev := 2.0
			for _, d := range []float64{5, 25, 50, 75, 99} {
				w := worldOf(cfg,
					atomic.Particle{Pos: atomic.Vec2{X: 200, Y: 300}},
					atomic.Particle{Pos: atomic.Vec2{X: 200 + d, Y: 300}},
				)
				ls := links(w.Step(dt, atomic.PointerSample{}))
				Expect(ls).To(HaveLen(1))
				Expect(ls[0].Color.A).To(BeNumerically("<", prev))
				prev = ls[0].Color.A
			}

			w := worldOf(cfg,
				atomic.Particle{Pos: atomic.Vec2{X: 200, Y: 300}},
				atomic.Particle{Pos: atomic.Vec2{X: 300, Y: 300}},
			)
			ls := links(w.Step(dt, atomic.PointerSample{}))
			Expect(ls).To(HaveLen(1))
			Expect(ls[0].Color.A).To(BeZero())
		})
	})

	Describe("burst edge trigger", func() {
		It("only arms particles on the tick the burst is supplied", func() {
			cfg.PointerBurstRadius = 20
			w := worldOf(cfg,
				atomic.Particle{Pos: atomic.Vec2{X: 100, Y: 100}, Vel: atomic.Vec2{X: 1}},
				atomic.Particle{Pos: atomic.Vec2{X: 500, Y: 400}, Vel: atomic.Vec2{X: 1}},
			)

			w.Step(dt, atomic.PointerSample{Pos: atomic.Vec2{X: 100, Y: 100}, BurstPending: true})
			Expect(w.Particle(0).Accelerating).To(BeTrue())
			Expect(w.Particle(1).Accelerating).To(BeFalse())

			w.Step(dt, atomic.PointerSample{Pos: atomic.Vec2{X: 500, Y: 400}})
			Expect(w.Particle(1).Accelerating).To(BeFalse())
		})
	})

	Describe("deterministic replay", func() {
		It("produces identical trajectories from identical inputs", func() {
			cfg.ParticleCount = 60
			a, err := atomic.New(cfg, rand.New(rand.NewSource(9)))
			Expect(err).NotTo(HaveOccurred())
			b, err := atomic.FromParticles(cfg, a.Particles())
			Expect(err).NotTo(HaveOccurred())

			for tick := 0; tick < 300; tick++ {
				ptr := atomic.PointerSample{
					Pos:          atomic.Vec2{X: float64(tick % 800), Y: 300},
					Active:       tick%3 == 0,
					BurstPending: tick%50 == 0,
				}
				ca := a.Step(dt, ptr)
				cb := b.Step(dt, ptr)
				Expect(ca).To(Equal(cb))
			}
			Expect(a.Particles()).To(Equal(b.Particles()))
		})
	})

	Describe("head-on pair", func() {
		It("resolves the head-on pair and links it", func() {
			cfg.Radius = 2
			cfg.LinkDistance = 100
			w := worldOf(cfg,
				atomic.Particle{Pos: atomic.Vec2{X: 10, Y: 50}, Vel: atomic.Vec2{X: 5}},
				atomic.Particle{Pos: atomic.Vec2{X: 13, Y: 50}, Vel: atomic.Vec2{X: -5}},
			)

			cmds := w.Step(dt, atomic.PointerSample{})

			Expect(w.Stats().Collisions).To(Equal(1))
			Expect(w.Particle(0).Vel.X).To(BeNumerically("~", -5, 1e-12))
			Expect(w.Particle(1).Vel.X).To(BeNumerically("~", 5, 1e-12))
			ls := links(cmds)
			Expect(ls).To(HaveLen(1))
			Expect(ls[0].Color.A).To(BeNumerically("~", cfg.LinkColor.A*(1-3.0/100), 1e-12))
		})
	})
})
