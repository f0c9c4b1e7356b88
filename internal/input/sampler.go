// Package input produces one atomic.PointerSample per tick from pointer
// events (Sampler) or from a deterministic synthetic path (Script).
package input

import (
	"sync"
	"time"

	"github.com/san-kum/atomsim/internal/atomic"
)

// DefaultActiveWindow is how long a pointer counts as active after its
// last movement.
const DefaultActiveWindow = time.Second

// Source yields the pointer sample for the next tick.
type Source interface {
	Next() atomic.PointerSample
}

// Sampler turns asynchronous pointer events into per-tick samples. Event
// methods may be called from any goroutine.
type Sampler struct {
	mu       sync.Mutex
	pos      atomic.Vec2
	lastMove time.Time
	moved    bool
	burst    bool
	window   time.Duration
	now      func() time.Time
}

func NewSampler(window time.Duration) *Sampler {
	if window <= 0 {
		window = DefaultActiveWindow
	}
	return &Sampler{window: window, now: time.Now}
}

// WithClock replaces the wall clock, for tests and replays.
func (s *Sampler) WithClock(now func() time.Time) *Sampler {
	s.now = now
	return s
}

// Move records a pointer movement and refreshes the activity window.
func (s *Sampler) Move(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = atomic.Vec2{X: x, Y: y}
	s.lastMove = s.now()
	s.moved = true
}

// Click records a burst at (x, y). It does not count as movement.
func (s *Sampler) Click(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = atomic.Vec2{X: x, Y: y}
	s.burst = true
}

// Position returns the latest pointer position.
func (s *Sampler) Position() atomic.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Next returns the sample for one tick and consumes any pending burst.
func (s *Sampler) Next() atomic.PointerSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := atomic.PointerSample{
		Pos:          s.pos,
		Active:       s.moved && s.now().Sub(s.lastMove) < s.window,
		BurstPending: s.burst,
	}
	s.burst = false
	if !sample.Active {
		s.moved = false
	}
	return sample
}

// Idle is a Source with the pointer parked off-world and never active.
type Idle struct{}

func (Idle) Next() atomic.PointerSample {
	return atomic.PointerSample{Pos: atomic.Vec2{X: -1e9, Y: -1e9}}
}
