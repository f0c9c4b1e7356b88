package config

import "sort"

// Presets are named starting points. "atomic" is the default set;
// "classic" has fast atoms, a small pointer radius, the doubled
// overspeed threshold and repels whenever the pointer is in range.
var Presets = map[string]*Config{
	"atomic": DefaultConfig(),
	"classic": func() *Config {
		c := DefaultConfig()
		c.MaxSpeed = 30
		c.PointerRadius = 10
		c.PointerSpeed = 30
		c.MaxBurstAccel = 30
		c.AccelDecayRate = 6
		c.OverspeedFactor = 2
		c.PointerRequiresMotion = false
		c.AtomColor = Color{155, 0, 200, 1.0}
		c.LinkColor = Color{200, 0, 155, 0.5}
		return c
	}(),
	"dense": func() *Config {
		c := DefaultConfig()
		c.Particles = 1200
		c.LinkDistance = 40
		c.BurstRadius = 150
		return c
	}(),
	"calm": func() *Config {
		c := DefaultConfig()
		c.Particles = 150
		c.MaxSpeed = 1
		c.PointerSpeed = 1
		c.MaxBurstAccel = 1
		c.AccelDecayRate = 0.5
		c.LinkDistance = 140
		c.BurstEvery = 0
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := cfg.Clone()
	cp.Preset = name
	return cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
