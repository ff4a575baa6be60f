package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/bikesim/internal/config"
	"github.com/san-kum/bikesim/internal/experiment"
)

// EnsembleObjective scores a parameter set by the mean of metric over runs
// randomized starts of base. Every trial sees the same seeds.
func EnsembleObjective(base *config.Config, metric string, runs int, log zerolog.Logger) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base.Clone()
		cfg.Record = false
		for name, v := range params {
			if err := cfg.ControllerParams.SetParam(name, v); err != nil {
				return 0, err
			}
		}

		// Trials already run in parallel.
		results, err := experiment.New(cfg, log).RunEnsemble(ctx, runs, 1)
		if err != nil {
			return 0, err
		}

		values := make([]float64, 0, len(results))
		for _, r := range results {
			v, ok := r.Metrics[metric]
			if !ok {
				return 0, fmt.Errorf("metric %q not recorded", metric)
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return math.NaN(), nil
		}
		return stat.Mean(values, nil), nil
	}
}
