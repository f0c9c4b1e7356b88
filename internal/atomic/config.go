package atomic

import (
	"fmt"
	"math"
	"strconv"
)

// RGBA is a color with numeric channels and alpha in [0,1].
type RGBA struct {
	R, G, B float64
	A       float64
}

// WithAlpha returns a copy of c with alpha replaced.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// String formats the color as a CSS rgba() value.
func (c RGBA) String() string {
	return "rgba(" + fmtChannel(c.R) + "," + fmtChannel(c.G) + "," + fmtChannel(c.B) + "," + fmtChannel(c.A) + ")"
}

func fmtChannel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Config holds the immutable per-run parameters of a World.
type Config struct {
	ParticleCount int

	Radius       float64
	MaxSpeed     float64
	LinkDistance float64

	PointerInfluenceRadius float64
	PointerInfluenceSpeed  float64
	PointerBurstRadius     float64

	MaxBurstAccel  float64
	AccelDecayRate float64

	// OverspeedFactor scales MaxSpeed to get the speed above which a
	// particle is re-armed into the burst state. Zero means 1.
	OverspeedFactor float64

	// PointerRequiresMotion gates the repulsion snap on PointerSample.Active.
	// When false the pointer repels whenever it is in range.
	PointerRequiresMotion bool

	Width, Height float64

	AtomColor RGBA
	LinkColor RGBA
}

// DefaultConfig returns the standard parameter set on an 800x600 world.
func DefaultConfig() Config {
	return Config{
		ParticleCount:          500,
		Radius:                 2.0,
		MaxSpeed:               3.0,
		LinkDistance:           100.0,
		PointerInfluenceRadius: 100.0,
		PointerInfluenceSpeed:  3.0,
		PointerBurstRadius:     300.0,
		MaxBurstAccel:          3.0,
		AccelDecayRate:         1.0,
		OverspeedFactor:        1.0,
		PointerRequiresMotion:  true,
		Width:                  800,
		Height:                 600,
		AtomColor:              RGBA{155, 0, 255, 0.5},
		LinkColor:              RGBA{200, 0, 155, 0.3},
	}
}

// Validate reports the first malformed field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.ParticleCount <= 0 {
		return invalid("particle count must be positive, got %d", c.ParticleCount)
	}

	finite := []struct {
		name string
		v    float64
	}{
		{"radius", c.Radius},
		{"max speed", c.MaxSpeed},
		{"link distance", c.LinkDistance},
		{"pointer influence radius", c.PointerInfluenceRadius},
		{"pointer influence speed", c.PointerInfluenceSpeed},
		{"pointer burst radius", c.PointerBurstRadius},
		{"max burst accel", c.MaxBurstAccel},
		{"accel decay rate", c.AccelDecayRate},
		{"overspeed factor", c.OverspeedFactor},
		{"width", c.Width},
		{"height", c.Height},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return invalid("%s must be finite, got %v", f.name, f.v)
		}
	}

	if c.Radius <= 0 {
		return invalid("radius must be positive, got %f", c.Radius)
	}
	if c.MaxSpeed <= 0 {
		return invalid("max speed must be positive, got %f", c.MaxSpeed)
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"link distance", c.LinkDistance},
		{"pointer influence radius", c.PointerInfluenceRadius},
		{"pointer influence speed", c.PointerInfluenceSpeed},
		{"pointer burst radius", c.PointerBurstRadius},
		{"overspeed factor", c.OverspeedFactor},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return invalid("%s must not be negative, got %f", f.name, f.v)
		}
	}

	if c.Width <= 0 || c.Height <= 0 {
		return invalid("bounds must be positive, got %fx%f", c.Width, c.Height)
	}

	if err := validColor("atom color", c.AtomColor); err != nil {
		return err
	}
	return validColor("link color", c.LinkColor)
}

// OverspeedThreshold is the speed above which integration re-arms a burst.
func (c *Config) OverspeedThreshold() float64 {
	if c.OverspeedFactor == 0 {
		return c.MaxSpeed
	}
	return c.OverspeedFactor * c.MaxSpeed
}

func validColor(name string, c RGBA) error {
	for _, v := range []float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("%s has a non-finite channel", name)
		}
	}
	if c.A < 0 || c.A > 1 {
		return invalid("%s alpha must be in [0,1], got %f", name, c.A)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
