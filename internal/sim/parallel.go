package sim

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

// ControllerFactory builds a fresh controller for the run seeded with seed.
type ControllerFactory func(seed uint64) dynamo.Controller

// MetricsFactory builds a fresh metric set for one run.
type MetricsFactory func() []dynamo.Metric

// Ensemble runs independent bicycles that differ only in their seed.
type Ensemble struct {
	opts          bicycle.Options
	newController ControllerFactory
	newMetrics    MetricsFactory
	numRuns       int
	seedStart     uint64
	limit         int
}

func NewEnsemble(opts bicycle.Options, newController ControllerFactory, newMetrics MetricsFactory, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{
		opts:          opts,
		newController: newController,
		newMetrics:    newMetrics,
		numRuns:       numRuns,
		seedStart:     seedStart,
		limit:         runtime.GOMAXPROCS(0),
	}
}

// SetLimit caps the number of runs in flight. n <= 0 means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns one result per seed, in seed order. The first failing run
// cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			opts := e.opts
			opts.Seed = e.seedStart + uint64(i)
			bike, err := bicycle.New(opts)
			if err != nil {
				return err
			}

			s := New(bike, e.newController(opts.Seed))
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
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

// Summary is the spread of one metric over an ensemble.
type Summary struct {
	Name string
	Mean float64
	Std  float64
	Min  float64
	Max  float64
	N    int
}

// Summarize aggregates every metric present in results, sorted by name.
func Summarize(results []*Result) []Summary {
	values := make(map[string][]float64)
	for _, r := range results {
		if r == nil {
			continue
		}
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
	}

	out := make([]Summary, 0, len(values))
	for name, xs := range values {
		sum := Summary{Name: name, N: len(xs), Min: xs[0], Max: xs[0]}
		for _, v := range xs {
			sum.Min = min(sum.Min, v)
			sum.Max = max(sum.Max, v)
		}
		if len(xs) > 1 {
			sum.Mean, sum.Std = stat.MeanStdDev(xs, nil)
		} else {
			sum.Mean = xs[0]
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
