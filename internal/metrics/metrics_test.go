package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

func sensors(s bicycle.State) dynamo.State { return s.Sensors(false) }

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, dynamo.Control{1, 0.02}, 0)
	m.Observe(nil, dynamo.Control{-3, 0}, 0.01)

	if got := m.Value(); got != 2 {
		t.Errorf("expected mean |T| of 2, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestUprightAndFallTime(t *testing.T) {
	up := NewUpright(FallAngle)
	fall := NewFallTime(FallAngle)
	tilt := NewMaxTilt()

	omegas := []float64{0, 0.1, 0.25, -0.3}
	for i, w := range omegas {
		x := sensors(bicycle.State{Omega: w})
		ti := float64(i) * 0.01
		up.Observe(x, nil, ti)
		fall.Observe(x, nil, ti)
		tilt.Observe(x, nil, ti)
	}

	if got := up.Value(); got != 0.5 {
		t.Errorf("expected half the samples upright, got %f", got)
	}
	if got := fall.Value(); got != 0.02 {
		t.Errorf("expected fall at t=0.02, got %f", got)
	}
	if got := tilt.Value(); got != 0.3 {
		t.Errorf("expected max tilt 0.3, got %f", got)
	}

	fall.Reset()
	if fall.Value() != -1 {
		t.Error("expected -1 before any fall")
	}
	up.Reset()
	if up.Value() != 1 {
		t.Error("expected fully upright with no samples")
	}
}

func TestRollEnergy(t *testing.T) {
	p, err := bicycle.NewParameters(bicycle.DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	m := NewRollEnergy(p)

	if got := m.At(sensors(bicycle.State{})); got != 0 {
		t.Errorf("expected zero energy upright at rest, got %f", got)
	}

	x := sensors(bicycle.State{Omega: 0.2, OmegaDot: 0.5})
	want := 0.5*p.Itot*0.25 + p.M*p.Gravity*p.H*(math.Cos(0.2)-1)
	m.Observe(x, nil, 0)
	if math.Abs(m.Value()-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestGoalDistance(t *testing.T) {
	m := NewGoalDistance(bicycle.Point{X: 3, Y: 4})
	if !math.IsInf(m.Value(), 1) {
		t.Error("expected +Inf before observing")
	}

	m.Observe(sensors(bicycle.State{}), nil, 0)
	m.Observe(sensors(bicycle.State{XF: 3, YF: 3}), nil, 0.01)
	m.Observe(sensors(bicycle.State{XF: 10, YF: 10}), nil, 0.02)

	if got := m.Value(); got != 1 {
		t.Errorf("expected closest approach 1, got %f", got)
	}
}

func TestPathLength(t *testing.T) {
	m := NewPathLength()
	for _, p := range []bicycle.State{{}, {XB: 3, YB: 4}, {XB: 3, YB: 5}} {
		m.Observe(sensors(p), nil, 0)
	}
	if got := m.Value(); got != 6 {
		t.Errorf("expected path length 6, got %f", got)
	}

	m.Reset()
	m.Observe(sensors(bicycle.State{XB: 100}), nil, 0)
	if m.Value() != 0 {
		t.Error("expected a fresh start after reset")
	}
}
