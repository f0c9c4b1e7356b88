package driver

import "time"

// Clock converts elapsed wall time into a whole number of fixed ticks.
// The physics always advances by the fixed dt; only the number of ticks
// per rendered frame varies.
type Clock struct {
	interval time.Duration
	acc      time.Duration
	maxCatch int
}

// NewClock returns a clock producing rate ticks per second, running at
// most maxCatchUp ticks per Advance. Backlog beyond that is dropped.
func NewClock(rate int, maxCatchUp int) *Clock {
	if rate <= 0 {
		rate = 60
	}
	if maxCatchUp <= 0 {
		maxCatchUp = 1
	}
	return &Clock{
		interval: time.Second / time.Duration(rate),
		maxCatch: maxCatchUp,
	}
}

// Advance adds elapsed time and returns how many ticks are due.
func (c *Clock) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	c.acc += elapsed
	n := int(c.acc / c.interval)
	c.acc -= time.Duration(n) * c.interval
	if n > c.maxCatch {
		n = c.maxCatch
		c.acc = 0
	}
	return n
}

func (c *Clock) Interval() time.Duration { return c.interval }

func (c *Clock) Reset() { c.acc = 0 }
