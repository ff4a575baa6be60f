// Package optim tunes controller gains by exhaustive search.
package optim

import (
	"context"
	"fmt"
	"maps"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Objective scores one parameter set. Errors abort the search.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	limit      int

	// Maximize flips the search to keep the largest score.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit caps concurrent evaluations. n <= 0 means no cap.
func (g *GridSearch) SetLimit(n int) { g.limit = n }

// Points enumerates the grid, last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, maps.Clone(current))
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.searchRecursive(depth+1, current, out)
	}
	delete(current, paramName)
}

// Search evaluates every grid point and returns the best one along with all
// trials, best first. NaN scores rank last.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("%d parameter names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	points := g.Points()
	if len(points) == 0 {
		return Trial{}, nil, fmt.Errorf("empty grid")
	}

	trials := make([]Trial, len(points))
	grp, ctx := errgroup.WithContext(ctx)
	if g.limit > 0 {
		grp.SetLimit(g.limit)
	}
	for i, p := range points {
		grp.Go(func() error {
			v, err := objective(ctx, p)
			if err != nil {
				return fmt.Errorf("trial %v: %w", p, err)
			}
			trials[i] = Trial{Params: p, Value: v}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return Trial{}, nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool {
		a, b := trials[i].Value, trials[j].Value
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if math.IsNaN(a) {
			return false
		}
		if g.Maximize {
			return a > b
		}
		return a < b
	})
	return trials[0], trials, nil
}
