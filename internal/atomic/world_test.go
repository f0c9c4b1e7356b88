package atomic

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.ParticleCount = n
	cfg.MaxSpeed = 10
	return cfg
}

func mustWorld(t *testing.T, cfg Config, ps ...Particle) *World {
	t.Helper()
	cfg.ParticleCount = len(ps)
	w, err := FromParticles(cfg, ps)
	require.NoError(t, err)
	return w
}

func linkCommands(cmds []DrawCommand) []DrawCommand {
	var out []DrawCommand
	for _, c := range cmds {
		if c.Kind == DrawLink {
			out = append(out, c)
		}
	}
	return out
}

func TestNew_PlacesParticlesInBounds(t *testing.T) {
	cfg := DefaultConfig()
	w, err := New(cfg, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Equal(t, cfg.ParticleCount, w.Len())

	for i, p := range w.Particles() {
		assert.GreaterOrEqual(t, p.Pos.X, 0.0, "particle %d x", i)
		assert.Less(t, p.Pos.X, cfg.Width, "particle %d x", i)
		assert.GreaterOrEqual(t, p.Pos.Y, 0.0, "particle %d y", i)
		assert.Less(t, p.Pos.Y, cfg.Height, "particle %d y", i)
		assert.GreaterOrEqual(t, p.Vel.X, 0.0)
		assert.Less(t, p.Vel.X, cfg.MaxSpeed)
		assert.GreaterOrEqual(t, p.Vel.Y, 0.0)
		assert.Less(t, p.Vel.Y, cfg.MaxSpeed)
		assert.False(t, p.Accelerating)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticleCount = 0
	w, err := New(cfg, rand.New(rand.NewSource(1)))
	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFromParticles_CountMismatch(t *testing.T) {
	cfg := testConfig(3)
	_, err := FromParticles(cfg, make([]Particle, 2))
	assert.ErrorIs(t, err, ErrParticleCount)
}

func TestStep_HeadOnScenario(t *testing.T) {
	cfg := testConfig(2)
	cfg.LinkDistance = 100
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{10, 50}, Vel: Vec2{5, 0}},
		Particle{Pos: Vec2{13, 50}, Vel: Vec2{-5, 0}},
	)

	cmds := w.Step(0.1, PointerSample{})

	assert.Equal(t, 1, w.Stats().Collisions)
	a, b := w.Particle(0), w.Particle(1)
	assert.InDelta(t, -5.0, a.Vel.X, 1e-12)
	assert.InDelta(t, 0.0, a.Vel.Y, 1e-12)
	assert.InDelta(t, 5.0, b.Vel.X, 1e-12)
	assert.InDelta(t, 0.0, b.Vel.Y, 1e-12)
	assert.InDelta(t, 9.5, a.Pos.X, 1e-12)
	assert.InDelta(t, 13.5, b.Pos.X, 1e-12)

	links := linkCommands(cmds)
	require.Len(t, links, 1)
	assert.InDelta(t, cfg.LinkColor.A*(1-3.0/100), links[0].Color.A, 1e-12)
	assert.InDelta(t, 12.0, links[0].From.X, 1e-12)
	assert.InDelta(t, 11.0, links[0].To.X, 1e-12)
}

func TestStep_CommandOrder(t *testing.T) {
	cfg := testConfig(3)
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{100, 100}},
		Particle{Pos: Vec2{130, 100}},
		Particle{Pos: Vec2{100, 140}},
	)

	cmds := w.Step(0.1, PointerSample{})
	require.Len(t, cmds, 6)
	for i := 0; i < 3; i++ {
		assert.Equal(t, DrawLink, cmds[i].Kind)
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, DrawAtom, cmds[i].Kind)
		assert.Equal(t, cfg.AtomColor, cmds[i].Color)
		assert.Equal(t, cfg.Radius, cmds[i].Radius)
	}
	assert.Equal(t, 3, w.Stats().Links)
}

func TestStep_CoincidentParticles(t *testing.T) {
	cfg := testConfig(2)
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{50, 50}, Vel: Vec2{0, 3}},
		Particle{Pos: Vec2{50, 50}, Vel: Vec2{0, -1}},
	)

	w.Step(0.1, PointerSample{})

	a, b := w.Particle(0), w.Particle(1)
	assert.Equal(t, 1, w.Stats().Collisions)
	assert.InDelta(t, -2.0, a.Vel.X, 1e-12)
	assert.InDelta(t, 0.0, a.Vel.Y, 1e-12)
	assert.InDelta(t, 2.0, b.Vel.X, 1e-12)
	assert.False(t, math.IsNaN(a.Pos.X) || math.IsNaN(b.Pos.X))
}

func TestStep_CollisionOrderFollowsCollection(t *testing.T) {
	// 1 touches both 0 and 2. 0 resolves its pair with 1 first, then 1
	// resolves against 2 using the velocity 0 just gave it.
	cfg := testConfig(3)
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{100, 100}, Vel: Vec2{4, 0}},
		Particle{Pos: Vec2{103, 100}, Vel: Vec2{0, 0}},
		Particle{Pos: Vec2{106, 100}, Vel: Vec2{0, 0}},
	)

	w.Step(0.1, PointerSample{})

	assert.Equal(t, 2, w.Stats().Collisions)
	p0, p1, p2 := w.Particle(0), w.Particle(1), w.Particle(2)
	assert.InDelta(t, -2.0, p0.Vel.X, 1e-12)
	assert.InDelta(t, -1.0, p1.Vel.X, 1e-12)
	assert.InDelta(t, 1.0, p2.Vel.X, 1e-12)
}

func TestStep_PointerRepulsion(t *testing.T) {
	tests := []struct {
		name          string
		requireMotion bool
		active        bool
		repelled      bool
	}{
		{"active pointer", true, true, true},
		{"idle pointer", true, false, false},
		{"unconditional", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(1)
			cfg.PointerRequiresMotion = tt.requireMotion
			w := mustWorld(t, cfg, Particle{Pos: Vec2{100, 100}, Vel: Vec2{0, 1}})

			w.Step(0.1, PointerSample{Pos: Vec2{150, 100}, Active: tt.active})

			p := w.Particle(0)
			if tt.repelled {
				assert.InDelta(t, -cfg.PointerInfluenceSpeed, p.Vel.X, 1e-12)
				assert.InDelta(t, 0.0, p.Vel.Y, 1e-12)
			} else {
				assert.Equal(t, Vec2{0, 1}, p.Vel)
			}
		})
	}
}

func TestStep_PointerOutOfRange(t *testing.T) {
	cfg := testConfig(1)
	w := mustWorld(t, cfg, Particle{Pos: Vec2{100, 100}, Vel: Vec2{1, 1}})

	w.Step(0.1, PointerSample{Pos: Vec2{500, 500}, Active: true, BurstPending: true})

	p := w.Particle(0)
	assert.Equal(t, Vec2{1, 1}, p.Vel)
	assert.False(t, p.Accelerating)
}

func TestStep_BurstIsEdgeTriggered(t *testing.T) {
	cfg := testConfig(2)
	cfg.PointerBurstRadius = 50
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{100, 100}, Vel: Vec2{1, 0}},
		Particle{Pos: Vec2{400, 400}, Vel: Vec2{1, 0}},
	)

	w.Step(0.1, PointerSample{Pos: Vec2{100, 100}, BurstPending: true})
	near, far := w.Particle(0), w.Particle(1)
	assert.True(t, near.Accelerating)
	assert.InDelta(t, cfg.MaxBurstAccel-0.1*cfg.AccelDecayRate, near.Accel, 1e-12)
	assert.False(t, far.Accelerating)

	w.Step(0.1, PointerSample{Pos: Vec2{400, 400}})
	assert.False(t, w.Particle(1).Accelerating)
	assert.Equal(t, 1, w.Stats().Bursting)
}

func TestStep_BurstDecaysToCruising(t *testing.T) {
	cfg := testConfig(1)
	cfg.MaxSpeed = 1000
	w := mustWorld(t, cfg, Particle{Pos: Vec2{400, 300}, Vel: Vec2{0.1, 0}})

	w.Step(0.1, PointerSample{Pos: Vec2{400, 300}, BurstPending: true})
	require.True(t, w.Particle(0).Accelerating)

	ticks := 1
	for w.Particle(0).Accelerating && ticks < 1000 {
		w.Step(0.1, PointerSample{Pos: Vec2{-1000, -1000}})
		ticks++
	}

	p := w.Particle(0)
	assert.False(t, p.Accelerating)
	assert.Equal(t, 0.0, p.Accel)
	// amax down to -amax at jerk*dt per tick, plus the transition tick.
	assert.InDelta(t, 2*cfg.MaxBurstAccel/(0.1*cfg.AccelDecayRate)+1, float64(ticks), 2)
}

func TestStep_OverspeedRearmsBurst(t *testing.T) {
	tests := []struct {
		name     string
		factor   float64
		expected bool
	}{
		{"single threshold", 1, true},
		{"double threshold", 2, false},
		{"zero means single", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(1)
			cfg.MaxSpeed = 3
			cfg.OverspeedFactor = tt.factor
			w := mustWorld(t, cfg, Particle{Pos: Vec2{400, 300}, Vel: Vec2{5, 0}})

			w.Step(0.1, PointerSample{})

			p := w.Particle(0)
			assert.Equal(t, tt.expected, p.Accelerating)
			assert.Equal(t, 0.0, p.Accel)
			// arming alone never changes the speed of this tick
			assert.InDelta(t, 5.0, p.Speed(), 1e-12)
		})
	}
}

func TestStep_WallReflection(t *testing.T) {
	cfg := testConfig(4)
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{cfg.Width - 1, 300}, Vel: Vec2{5, 0}},
		Particle{Pos: Vec2{1, 300}, Vel: Vec2{-5, 0}},
		Particle{Pos: Vec2{200, cfg.Height - 1}, Vel: Vec2{0, 5}},
		Particle{Pos: Vec2{600, 1}, Vel: Vec2{0, -5}},
	)

	w.Step(0.1, PointerSample{})

	assert.Equal(t, -5.0, w.Particle(0).Vel.X)
	assert.InDelta(t, cfg.Width-0.5, w.Particle(0).Pos.X, 1e-12)
	assert.Equal(t, 5.0, w.Particle(1).Vel.X)
	assert.Equal(t, -5.0, w.Particle(2).Vel.Y)
	assert.Equal(t, 5.0, w.Particle(3).Vel.Y)
}

func TestStep_InwardVelocityAtWallIsKept(t *testing.T) {
	cfg := testConfig(1)
	w := mustWorld(t, cfg, Particle{Pos: Vec2{cfg.Width + 1, 300}, Vel: Vec2{-5, 0}})

	w.Step(0.1, PointerSample{})

	assert.Equal(t, -5.0, w.Particle(0).Vel.X)
}

func TestStep_TransientsDoNotPersist(t *testing.T) {
	cfg := testConfig(2)
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{100, 100}},
		Particle{Pos: Vec2{150, 100}},
	)

	for i := 0; i < 3; i++ {
		cmds := w.Step(0.1, PointerSample{})
		assert.Len(t, linkCommands(cmds), 1, "tick %d", i)
	}
	assert.Equal(t, 3, w.Ticks())
}

func TestLinkAlpha_ZeroDistanceConfig(t *testing.T) {
	cfg := testConfig(2)
	cfg.LinkDistance = 0
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{100, 100}},
		Particle{Pos: Vec2{100, 100}},
	)

	cmds := w.Step(0.1, PointerSample{})
	links := linkCommands(cmds)
	require.Len(t, links, 1)
	assert.Equal(t, 0.0, links[0].Color.A)
}

func TestStats_MeanSpeed(t *testing.T) {
	cfg := testConfig(2)
	w := mustWorld(t, cfg,
		Particle{Pos: Vec2{100, 100}, Vel: Vec2{3, 4}},
		Particle{Pos: Vec2{500, 500}, Vel: Vec2{1, 0}},
	)

	w.Step(0.1, PointerSample{})
	assert.InDelta(t, 3.0, w.Stats().MeanSpeed, 1e-12)
}

func TestParticles_ReturnsCopy(t *testing.T) {
	cfg := testConfig(1)
	w := mustWorld(t, cfg, Particle{Pos: Vec2{1, 2}})

	ps := w.Particles()
	ps[0].Pos.X = 99
	assert.Equal(t, 1.0, w.Particle(0).Pos.X)
}

func BenchmarkStep(b *testing.B) {
	for _, n := range []int{100, 500} {
		cfg := DefaultConfig()
		cfg.ParticleCount = n
		w, err := New(cfg, rand.New(rand.NewSource(1)))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				w.Step(0.1, PointerSample{})
			}
		})
	}
}
