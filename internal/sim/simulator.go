package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

type Simulator struct {
	bike       *bicycle.Bicycle
	controller dynamo.Controller
	metrics    []dynamo.Metric
}

func New(bike *bicycle.Bicycle, controller dynamo.Controller) *Simulator {
	return &Simulator{
		bike:       bike,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
	}
}

func (s *Simulator) Bike() *bicycle.Bicycle { return s.bike }

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

// AddObserver registers o on the bike, so it sees every step including
// those driven outside Run.
func (s *Simulator) AddObserver(o dynamo.Observer) { s.bike.AddObserver(o) }

func (s *Simulator) begin(cfg Config) (int, error) {
	steps, err := cfg.steps(s.bike.Params().TimeStep)
	if err != nil {
		return 0, err
	}
	if cfg.Reset {
		s.bike.Reset()
	}
	if r, ok := s.controller.(dynamo.Resetter); ok && cfg.Reset {
		r.Reset()
	}
	return steps, nil
}

// act asks the controller for the next action.
func (s *Simulator) act(x dynamo.State, t float64) (dynamo.Control, bicycle.Action, error) {
	u := s.controller.Compute(x, t)
	a, err := bicycle.ActionFrom(u)
	if err != nil {
		return u, a, fmt.Errorf("controller returned %d outputs, want 2: %w", len(u), err)
	}
	return u, a, nil
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	steps, err := s.begin(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.bike.Sensors()
	t := s.bike.Time()
	result.States = append(result.States, x)
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		u, a, err := s.act(x, t)
		if err != nil {
			s.finish(result)
			return result, err
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}

		if _, err := s.bike.Step(a); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		next := s.bike.Sensors()
		if cfg.ValidateState && !next.IsValid() {
			result.Errors = append(result.Errors, dynamo.SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		x = next
		t = s.bike.Time()
		result.StepsTaken++

		result.States = append(result.States, x)
		result.Controls = append(result.Controls, u.Clone())
		result.Times = append(result.Times, t)
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	traj := s.bike.Trajectory()
	result.Trajectory = Track{Front: traj.Front(), Rear: traj.Rear()}
}

// RunWithCallback streams each (state, control, time) before the step is
// applied. Returning false from callback stops the run without error.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(dynamo.State, dynamo.Control, float64) bool) error {
	steps, err := s.begin(cfg)
	if err != nil {
		return err
	}

	x := s.bike.Sensors()
	t := s.bike.Time()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		u, a, err := s.act(x, t)
		if err != nil {
			return err
		}

		if !callback(x, u, t) {
			return nil
		}

		if _, err := s.bike.Step(a); err != nil {
			return err
		}
		x = s.bike.Sensors()
		t = s.bike.Time()

		if cfg.ValidateState && !x.IsValid() {
			return dynamo.SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
		}
	}

	return nil
}
