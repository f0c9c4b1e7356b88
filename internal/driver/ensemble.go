package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BuildFunc returns a fresh runner for one seed. Metrics are stateful,
// so each runner needs its own instances.
type BuildFunc func(seed int64) (*Runner, error)

// Ensemble runs independent worlds, one per seed, concurrently.
type Ensemble struct {
	build     BuildFunc
	numRuns   int
	seedStart int64
	// Workers bounds concurrency; zero means one per CPU.
	Workers int
}

func NewEnsemble(build BuildFunc, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one result per seed, in seed order. The first failing run
// cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < e.numRuns; i++ {
		i := i
		seed := e.seedStart + int64(i)
		g.Go(func() error {
			r, err := e.build(seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res, err := r.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MetricValues collects one named metric across results.
func MetricValues(results []*Result, name string) []float64 {
	out := make([]float64, 0, len(results))
	for _, r := range results {
		if v, ok := r.Metrics[name]; ok {
			out = append(out, v)
		}
	}
	return out
}
