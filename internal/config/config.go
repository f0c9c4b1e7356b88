package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/atomsim/internal/atomic"
)

const (
	DefaultDt           = 0.1
	DefaultTicks        = 600
	DefaultFPS          = 60
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultActiveWindow = 1.0
)

// Config is the YAML run configuration: world parameters plus the
// frame-driver settings that are not part of the simulation core.
type Config struct {
	Preset string `yaml:"preset,omitempty"`

	Particles      int     `yaml:"particles"`
	Radius         float64 `yaml:"radius"`
	MaxSpeed       float64 `yaml:"max_speed"`
	LinkDistance   float64 `yaml:"link_distance"`
	PointerRadius  float64 `yaml:"pointer_radius"`
	PointerSpeed   float64 `yaml:"pointer_speed"`
	BurstRadius    float64 `yaml:"burst_radius"`
	MaxBurstAccel  float64 `yaml:"max_burst_accel"`
	AccelDecayRate float64 `yaml:"accel_decay_rate"`

	OverspeedFactor       float64 `yaml:"overspeed_factor"`
	PointerRequiresMotion bool    `yaml:"pointer_requires_motion"`

	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	AtomColor Color `yaml:"atom_color"`
	LinkColor Color `yaml:"link_color"`

	Dt           float64 `yaml:"dt"`
	Ticks        int     `yaml:"ticks"`
	Seed         int64   `yaml:"seed"`
	FPS          int     `yaml:"fps"`
	ActiveWindow float64 `yaml:"active_window"`
	BurstEvery   int     `yaml:"burst_every"`
}

// Color is an [r, g, b, a] quadruple: channels 0-255, alpha 0-1.
type Color [4]float64

func (c Color) RGBA() atomic.RGBA {
	return atomic.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

func DefaultConfig() *Config {
	return &Config{
		Particles:             500,
		Radius:                2.0,
		MaxSpeed:              3.0,
		LinkDistance:          100.0,
		PointerRadius:         100.0,
		PointerSpeed:          3.0,
		BurstRadius:           300.0,
		MaxBurstAccel:         3.0,
		AccelDecayRate:        1.0,
		OverspeedFactor:       1.0,
		PointerRequiresMotion: true,
		Width:                 DefaultWidth,
		Height:                DefaultHeight,
		AtomColor:             Color{155, 0, 255, 0.5},
		LinkColor:             Color{200, 0, 155, 0.3},
		Dt:                    DefaultDt,
		Ticks:                 DefaultTicks,
		FPS:                   DefaultFPS,
		ActiveWindow:          DefaultActiveWindow,
		BurstEvery:            120,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Preset != "" {
		base := GetPreset(cfg.Preset)
		if base == nil {
			return nil, fmt.Errorf("%s: unknown preset %q", path, cfg.Preset)
		}
		// Re-decode over the preset so keys in the file win.
		merged := base.Clone()
		if err := yaml.Unmarshal(data, merged); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg = merged
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// World converts the run configuration into the simulation core's
// configuration and validates it.
func (c *Config) World() (atomic.Config, error) {
	wc := atomic.Config{
		ParticleCount:          c.Particles,
		Radius:                 c.Radius,
		MaxSpeed:               c.MaxSpeed,
		LinkDistance:           c.LinkDistance,
		PointerInfluenceRadius: c.PointerRadius,
		PointerInfluenceSpeed:  c.PointerSpeed,
		PointerBurstRadius:     c.BurstRadius,
		MaxBurstAccel:          c.MaxBurstAccel,
		AccelDecayRate:         c.AccelDecayRate,
		OverspeedFactor:        c.OverspeedFactor,
		PointerRequiresMotion:  c.PointerRequiresMotion,
		Width:                  c.Width,
		Height:                 c.Height,
		AtomColor:              c.AtomColor.RGBA(),
		LinkColor:              c.LinkColor.RGBA(),
	}
	if err := wc.Validate(); err != nil {
		return atomic.Config{}, err
	}
	return wc, nil
}

// ActiveDuration is the pointer activity window as a duration.
func (c *Config) ActiveDuration() time.Duration {
	return time.Duration(c.ActiveWindow * float64(time.Second))
}

// With returns a copy with the given YAML keys overridden. Values are
// decoded as if written in the file, so integer keys reject fractions.
func (c *Config) With(params map[string]float64) (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for key, val := range params {
		if _, ok := doc[key]; !ok {
			return nil, fmt.Errorf("unknown config key %q", key)
		}
		doc[key] = val
	}
	if data, err = yaml.Marshal(doc); err != nil {
		return nil, err
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("apply %v: %w", params, err)
	}
	return out, nil
}
