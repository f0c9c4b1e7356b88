package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/atomsim/internal/atomic"
)

const linkThickness = 1.0

// Surface draws commands straight to the raylib frame. World
// coordinates are window pixels.
type Surface struct{}

func (Surface) Line(from, to atomic.Vec2, c atomic.RGBA) {
	rl.DrawLineEx(vec(from), vec(to), linkThickness, toColor(c))
}

func (Surface) Disc(center atomic.Vec2, radius float64, c atomic.RGBA) {
	rl.DrawCircleV(vec(center), float32(radius), toColor(c))
}

func vec(v atomic.Vec2) rl.Vector2 {
	return rl.NewVector2(float32(v.X), float32(v.Y))
}

func toColor(c atomic.RGBA) rl.Color {
	return rl.NewColor(channel(c.R), channel(c.G), channel(c.B), channel(c.A*255))
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
