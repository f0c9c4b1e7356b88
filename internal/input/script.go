package input

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/san-kum/atomsim/internal/atomic"
)

const (
	scriptAlpha  = 2.0
	scriptBeta   = 2.0
	scriptOctave = 3
)

// Script is a synthetic pointer that wanders over the world along a
// perlin-noise path and fires a burst every BurstEvery ticks. The path
// depends only on the seed, so scripted runs replay exactly.
type Script struct {
	noise         *perlin.Perlin
	width, height float64
	// Rate is the noise-space distance travelled per tick.
	Rate       float64
	BurstEvery int
	tick       int
}

func NewScript(width, height float64, seed int64, burstEvery int) *Script {
	return &Script{
		noise:      perlin.NewPerlin(scriptAlpha, scriptBeta, scriptOctave, seed),
		width:      width,
		height:     height,
		Rate:       0.01,
		BurstEvery: burstEvery,
	}
}

func (s *Script) Next() atomic.PointerSample {
	t := float64(s.tick) * s.Rate
	// Offset the y lane so the two axes are uncorrelated.
	x := s.scale(s.noise.Noise2D(t, 0), s.width)
	y := s.scale(s.noise.Noise2D(t, 100), s.height)

	burst := s.BurstEvery > 0 && s.tick%s.BurstEvery == s.BurstEvery-1
	s.tick++

	return atomic.PointerSample{
		Pos:          atomic.Vec2{X: x, Y: y},
		Active:       true,
		BurstPending: burst,
	}
}

// scale maps a noise value, roughly in [-1,1], onto [0,extent].
func (s *Script) scale(n, extent float64) float64 {
	v := (n + 1) / 2 * extent
	return math.Max(0, math.Min(extent, v))
}
