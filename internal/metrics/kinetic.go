package metrics

import (
	"math"

	"github.com/san-kum/atomsim/internal/atomic"
)

// MeanSpeed averages the per-tick mean particle speed over a run.
type MeanSpeed struct {
	samples int
	total   float64
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(w *atomic.World, tick int) {
	m.total += w.Stats().MeanSpeed
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.total = 0
	m.samples = 0
}

// PeakSpeed is the largest single-particle speed seen after any tick.
type PeakSpeed struct {
	peak float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(w *atomic.World, tick int) {
	for i := 0; i < w.Len(); i++ {
		part := w.Particle(i)
		p.peak = math.Max(p.peak, part.Speed())
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }
