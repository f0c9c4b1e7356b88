package driver

import (
	"errors"
	"fmt"

	"github.com/san-kum/atomsim/internal/atomic"
)

var (
	// ErrInvalidTimestep indicates a non-positive or non-finite dt.
	ErrInvalidTimestep = errors.New("driver: timestep must be positive")

	// ErrInvalidTicks indicates a negative tick budget.
	ErrInvalidTicks = errors.New("driver: tick count must not be negative")
)

// Metric aggregates a scalar over a run.
type Metric interface {
	Name() string
	Observe(w *atomic.World, tick int)
	Value() float64
	Reset()
}

// Observer is notified after every tick with that tick's draw commands.
type Observer interface {
	OnStep(w *atomic.World, tick int, cmds []atomic.DrawCommand)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(w *atomic.World, tick int, cmds []atomic.DrawCommand)

func (f ObserverFunc) OnStep(w *atomic.World, tick int, cmds []atomic.DrawCommand) {
	f(w, tick, cmds)
}

type Config struct {
	Dt    float64
	Ticks int
}

// TickStats is the per-tick record kept in a Result.
type TickStats struct {
	Tick int
	Time float64
	atomic.Stats
}

type Result struct {
	Stats      []TickStats
	Metrics    map[string]float64
	TicksTaken int
}

// StepError carries the tick at which a run stopped.
type StepError struct {
	Tick    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
