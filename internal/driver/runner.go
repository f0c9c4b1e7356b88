// Package driver is the frame driver around an atomic.World: it supplies
// the fixed timestep and one pointer sample per tick, and hands each
// tick's draw commands to observers or a renderer.
package driver

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/atomsim/internal/atomic"
	"github.com/san-kum/atomsim/internal/input"
)

type Runner struct {
	world     *atomic.World
	pointer   input.Source
	metrics   []Metric
	observers []Observer
	tick      int
}

func New(w *atomic.World, pointer input.Source) *Runner {
	if pointer == nil {
		pointer = input.Idle{}
	}
	return &Runner{
		world:     w,
		pointer:   pointer,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }
func (r *Runner) World() *atomic.World   { return r.world }
func (r *Runner) Tick() int              { return r.tick }

// Step advances one tick and notifies metrics and observers.
func (r *Runner) Step(dt float64) []atomic.DrawCommand {
	cmds := r.world.Step(dt, r.pointer.Next())
	r.tick++
	for _, m := range r.metrics {
		m.Observe(r.world, r.tick)
	}
	for _, o := range r.observers {
		o.OnStep(r.world, r.tick, cmds)
	}
	return cmds
}

// Run advances cfg.Ticks ticks, stopping early if ctx is done.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Stats:   make([]TickStats, 0, cfg.Ticks),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, &StepError{Tick: r.tick, Wrapped: ctx.Err()}
		default:
		}

		r.Step(cfg.Dt)
		result.TicksTaken++
		result.Stats = append(result.Stats, TickStats{
			Tick:  r.tick,
			Time:  float64(r.tick) * cfg.Dt,
			Stats: r.world.Stats(),
		})
	}

	r.collect(result)
	return result, nil
}

// RunWithCallback steps until callback returns false, cfg.Ticks is
// reached (when positive) or ctx is done.
func (r *Runner) RunWithCallback(ctx context.Context, cfg Config, callback func(tick int, cmds []atomic.DrawCommand) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; cfg.Ticks == 0 || i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cmds := r.Step(cfg.Dt)
		if !callback(r.tick, cmds) {
			return nil
		}
	}
	return nil
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w, got %f", ErrInvalidTimestep, cfg.Dt)
	}
	if cfg.Ticks < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidTicks, cfg.Ticks)
	}
	return nil
}
