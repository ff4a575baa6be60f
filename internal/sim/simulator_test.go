package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

type testController struct {
	u     dynamo.Control
	calls int
}

func (c *testController) Compute(x dynamo.State, t float64) dynamo.Control {
	c.calls++
	return c.u
}

func (c *testController) Reset() { c.calls = 0 }

func newBike(t *testing.T, opts bicycle.Options) *bicycle.Bicycle {
	t.Helper()
	b, err := bicycle.New(opts)
	if err != nil {
		t.Fatalf("new bicycle: %v", err)
	}
	return b
}

func TestSimulatorRun(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{Record: true}), &testController{u: dynamo.Control{0, 0}})

	result, err := sim.Run(context.Background(), Config{Steps: 50})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 51 {
		t.Errorf("expected 51 states, got %d", len(result.States))
	}
	if len(result.Times) != 51 {
		t.Errorf("expected 51 times, got %d", len(result.Times))
	}
	if len(result.Controls) != 50 {
		t.Errorf("expected 50 controls, got %d", len(result.Controls))
	}
	if result.StepsTaken != 50 {
		t.Errorf("expected 50 steps, got %d", result.StepsTaken)
	}
	if len(result.Trajectory.Front) != 50 {
		t.Errorf("expected 50 recorded contacts, got %d", len(result.Trajectory.Front))
	}

	final := result.Final()
	want := bicycle.DefaultConstants().L + 50*bicycle.DefaultVelocity*bicycle.DefaultTimeStep
	if math.Abs(final[bicycle.IdxYF]-want) > 1e-9 {
		t.Errorf("expected yf ~%.4f, got %.4f", want, final[bicycle.IdxYF])
	}
}

func TestSimulatorDuration(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{0, 0}})

	result, err := sim.Run(context.Background(), Config{Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps at dt=0.01, got %d", result.StepsTaken)
	}
	if math.Abs(result.Times[len(result.Times)-1]-1.0) > 1e-9 {
		t.Errorf("expected final time 1.0, got %f", result.Times[len(result.Times)-1])
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{0, 0}})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"negative steps", Config{Steps: -1}},
		{"negative duration", Config{Duration: -1.0}},
		{"infinite duration", Config{Duration: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSimulatorControlDimension(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{1}})

	_, err := sim.Run(context.Background(), Config{Steps: 10})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimulatorInvalidAction(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{math.NaN(), 0}})

	result, err := sim.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %d", len(result.Errors))
	}
	var ae *dynamo.ActionError
	if !errors.As(result.Errors[0], &ae) {
		t.Errorf("expected *ActionError, got %T", result.Errors[0])
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{0, 0}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Steps: 10})
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
	if result == nil || len(result.States) != 1 {
		t.Errorf("expected the initial state only")
	}
}

func TestSimulatorReset(t *testing.T) {
	bike := newBike(t, bicycle.Options{})
	ctrl := &testController{u: dynamo.Control{0.5, 0}}
	sim := New(bike, ctrl)

	if _, err := sim.Run(context.Background(), Config{Steps: 20}); err != nil {
		t.Fatal(err)
	}
	result, err := sim.Run(context.Background(), Config{Steps: 5, Reset: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Times[0] != 0 {
		t.Errorf("expected reset to restart the clock, got t=%f", result.Times[0])
	}
	if ctrl.calls != 5 {
		t.Errorf("expected controller reset, got %d calls", ctrl.calls)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x dynamo.State, u dynamo.Control, time float64) {
	t.count++
	t.sum += u[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{0.25, 0}})

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got, ok := result.Metrics["test"]
	if !ok {
		t.Fatal("metric not found in result")
	}
	if got != 0.25 {
		t.Errorf("expected mean torque 0.25, got %f", got)
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestSimulatorObserver(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{0, 0}})

	var seen int
	sim.AddObserver(dynamo.ObserverFunc(func(x dynamo.State, u dynamo.Control, t float64) {
		seen++
	}))

	if _, err := sim.Run(context.Background(), Config{Steps: 7}); err != nil {
		t.Fatal(err)
	}
	if seen != 7 {
		t.Errorf("expected 7 notifications, got %d", seen)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(newBike(t, bicycle.Options{}), &testController{u: dynamo.Control{0, 0}})

	var times []float64
	err := sim.RunWithCallback(context.Background(), Config{Steps: 100}, func(x dynamo.State, u dynamo.Control, t float64) bool {
		times = append(times, t)
		return len(times) < 3
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(times) != 3 {
		t.Fatalf("expected callback to stop after 3 calls, got %d", len(times))
	}
	if sim.Bike().Steps() != 2 {
		t.Errorf("expected 2 applied steps, got %d", sim.Bike().Steps())
	}
}
