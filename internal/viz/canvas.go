package viz

import (
	"math"
	"strings"

	"github.com/san-kum/atomsim/internal/atomic"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBase = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells, each holding 2x4 sub-pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelWidth and PixelHeight are the canvas size in sub-pixels.
func (c *Canvas) PixelWidth() int  { return c.Width * 2 }
func (c *Canvas) PixelHeight() int { return c.Height * 4 }

// Set sets the sub-pixel at (x, y). Out of range is ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the sub-pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillDisc lights every sub-pixel within r of (cx, cy). r <= 0 lights
// the centre only.
func (c *Canvas) FillDisc(cx, cy, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// DefaultMinLinkAlpha hides links too faint to read on a one-bit canvas.
const DefaultMinLinkAlpha = 0.05

// Surface replays draw commands onto a Canvas, scaling world
// coordinates to sub-pixels.
type Surface struct {
	Canvas       *Canvas
	MinLinkAlpha float64
	sx, sy       float64
}

func NewSurface(c *Canvas, worldW, worldH float64) *Surface {
	return &Surface{
		Canvas:       c,
		MinLinkAlpha: DefaultMinLinkAlpha,
		sx:           float64(c.PixelWidth()) / worldW,
		sy:           float64(c.PixelHeight()) / worldH,
	}
}

func (s *Surface) project(v atomic.Vec2) (int, int) {
	return int(math.Round(v.X * s.sx)), int(math.Round(v.Y * s.sy))
}

func (s *Surface) Line(from, to atomic.Vec2, col atomic.RGBA) {
	if col.A < s.MinLinkAlpha {
		return
	}
	x0, y0 := s.project(from)
	x1, y1 := s.project(to)
	s.Canvas.DrawLine(x0, y0, x1, y1)
}

func (s *Surface) Disc(center atomic.Vec2, radius float64, _ atomic.RGBA) {
	x, y := s.project(center)
	s.Canvas.FillDisc(x, y, int(radius*math.Min(s.sx, s.sy)))
}

// ToWorld maps a terminal cell to the world position at its centre.
func (s *Surface) ToWorld(col, row int) atomic.Vec2 {
	return atomic.Vec2{
		X: (float64(col)*2 + 1) / s.sx,
		Y: (float64(row)*4 + 2) / s.sy,
	}
}

// Render clears the canvas and draws one tick's commands.
func (s *Surface) Render(cmds []atomic.DrawCommand) {
	s.Canvas.Clear()
	atomic.Replay(cmds, s)
}
