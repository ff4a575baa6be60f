package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/config"
	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/sim"
)

type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	bike       *bicycle.Bicycle
	controller dynamo.Controller
	simulator  *sim.Simulator
	log        zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      log,
	}
}

// Setup validates the config and builds the bicycle, controller and
// metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	bike, err := bicycle.New(e.cfg.BicycleOptions())
	if err != nil {
		return err
	}
	ctrl, err := e.registry.GetController(e.cfg.Controller, e.cfg.GetControllerParams())
	if err != nil {
		return err
	}

	e.bike = bike
	e.controller = ctrl
	e.simulator = sim.New(bike, ctrl)
	for _, m := range e.registry.DefaultMetrics(bike.Params(), e.cfg.Goal) {
		e.simulator.AddMetric(m)
	}

	e.log.Debug().
		Str("controller", e.cfg.Controller).
		Bool("randomize", e.cfg.Randomize).
		Uint64("seed", e.cfg.Seed).
		Bool("goal", bike.HasGoal()).
		Msg("experiment set up")
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		Steps:         e.cfg.TotalSteps(),
		ValidateState: true,
	}

	result, err := e.simulator.Run(ctx, simCfg)
	if err != nil {
		return result, err
	}
	for _, rerr := range result.Errors {
		e.log.Warn().Err(rerr).Msg("run stopped early")
	}
	e.log.Info().
		Int("steps", result.StepsTaken).
		Float64("fall_time", result.Metrics["fall_time"]).
		Msg("run finished")
	return result, nil
}

// RunEnsemble runs n seeded copies of the configured experiment starting at
// the configured seed, with at most limit in flight.
func (e *Experiment) RunEnsemble(ctx context.Context, n, limit int) ([]*sim.Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := bicycle.NewParameters(e.cfg.Constants)
	if err != nil {
		return nil, err
	}
	if _, err := e.registry.GetController(e.cfg.Controller, e.cfg.GetControllerParams()); err != nil {
		return nil, err
	}

	opts := e.cfg.BicycleOptions()
	opts.Randomize = true

	ens := sim.NewEnsemble(opts,
		func(seed uint64) dynamo.Controller {
			p := e.cfg.GetControllerParams()
			p["seed"] = float64(seed)
			ctrl, _ := e.registry.GetController(e.cfg.Controller, p)
			return ctrl
		},
		func() []dynamo.Metric { return e.registry.DefaultMetrics(params, e.cfg.Goal) },
		n, e.cfg.Seed,
	)
	ens.SetLimit(limit)

	e.log.Info().Int("runs", n).Int("limit", limit).Str("controller", e.cfg.Controller).Msg("ensemble started")
	results, err := ens.Run(ctx, sim.Config{Steps: e.cfg.TotalSteps(), ValidateState: true})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Bike() *bicycle.Bicycle        { return e.bike }
func (e *Experiment) Controller() dynamo.Controller { return e.controller }
func (e *Experiment) Config() *config.Config        { return e.cfg }
