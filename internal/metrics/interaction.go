package metrics

import (
	"github.com/san-kum/atomsim/internal/atomic"
	"github.com/san-kum/atomsim/internal/driver"
)

// CollisionRate is the mean number of resolved collisions per tick.
type CollisionRate struct {
	ticks int
	total int
}

func NewCollisionRate() *CollisionRate { return &CollisionRate{} }

func (c *CollisionRate) Name() string { return "collision_rate" }

func (c *CollisionRate) Observe(w *atomic.World, tick int) {
	c.total += w.Stats().Collisions
	c.ticks++
}

func (c *CollisionRate) Value() float64 {
	if c.ticks == 0 {
		return 0
	}
	return float64(c.total) / float64(c.ticks)
}

func (c *CollisionRate) Reset() {
	c.total = 0
	c.ticks = 0
}

// LinkDensity is the mean number of links per particle per tick.
type LinkDensity struct {
	ticks int
	total float64
}

func NewLinkDensity() *LinkDensity { return &LinkDensity{} }

func (l *LinkDensity) Name() string { return "link_density" }

func (l *LinkDensity) Observe(w *atomic.World, tick int) {
	if w.Len() == 0 {
		return
	}
	l.total += float64(w.Stats().Links) / float64(w.Len())
	l.ticks++
}

func (l *LinkDensity) Value() float64 {
	if l.ticks == 0 {
		return 0
	}
	return l.total / float64(l.ticks)
}

func (l *LinkDensity) Reset() {
	l.total = 0
	l.ticks = 0
}

// BurstFraction is the mean share of particles in the burst state.
type BurstFraction struct {
	ticks int
	total float64
}

func NewBurstFraction() *BurstFraction { return &BurstFraction{} }

func (b *BurstFraction) Name() string { return "burst_fraction" }

func (b *BurstFraction) Observe(w *atomic.World, tick int) {
	if w.Len() == 0 {
		return
	}
	b.total += float64(w.Stats().Bursting) / float64(w.Len())
	b.ticks++
}

func (b *BurstFraction) Value() float64 {
	if b.ticks == 0 {
		return 0
	}
	return b.total / float64(b.ticks)
}

func (b *BurstFraction) Reset() {
	b.total = 0
	b.ticks = 0
}

// Standard returns one of every metric, in report order.
func Standard() []driver.Metric {
	return []driver.Metric{
		NewMeanSpeed(),
		NewPeakSpeed(),
		NewCollisionRate(),
		NewLinkDensity(),
		NewBurstFraction(),
	}
}
