// Package optim sweeps configuration parameters over a grid.
package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Objective scores one grid point.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
}

// Search evaluates every grid point, first axis outermost, and returns
// them with the index of the best one: highest when maximize is set,
// lowest otherwise.
func (g *GridSearch) Search(ctx context.Context, objective Objective, maximize bool) ([]Point, int, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, -1, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []Point
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &points); err != nil {
		return points, -1, err
	}

	best := -1
	bestVal := math.Inf(1)
	if maximize {
		bestVal = math.Inf(-1)
	}
	for i, p := range points {
		if (maximize && p.Value > bestVal) || (!maximize && p.Value < bestVal) {
			best, bestVal = i, p.Value
		}
	}
	return points, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil {
			return fmt.Errorf("optim: at %v: %w", current, err)
		}
		*points = append(*points, Point{Params: current, Value: val})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, points); err != nil {
			return err
		}
	}
	return nil
}

// ParseAxis parses "name=v1,v2,...".
func ParseAxis(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("optim: axis %q: want name=v1,v2,...", s)
	}
	parts := strings.Split(list, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: axis %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
