package bicycle

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"

	"github.com/san-kum/bikesim/internal/dynamo"
	"gonum.org/v1/gonum/stat/distuv"
)

// Options configure a Bicycle. The zero value is a deterministic plain
// balancing bicycle with the default constants.
type Options struct {
	// Constants default to DefaultConstants when left zero.
	Constants Constants

	// Randomize perturbs theta and omega around equilibrium at reset and
	// places the front contact at a random point of the wheelbase circle.
	Randomize bool
	// InitSpread is the standard deviation of the perturbation in radians,
	// DefaultInitSpread when zero.
	InitSpread float64
	Seed       uint64

	// Goal enables psig, the signed angle from heading to this point.
	Goal *Point

	// Record keeps the wheel-contact history.
	Record bool
}

// Bicycle is one simulation instance. Create with New.
type Bicycle struct {
	params Parameters
	goal   *Point

	randomize bool
	tilt      distuv.Normal
	offset    distuv.Uniform

	state   State
	prev    Previous
	last    Derivatives
	steps   int
	record  bool
	history Trajectory

	observers []dynamo.Observer
}

// New validates opts and returns a Bicycle already reset.
func New(opts Options) (*Bicycle, error) {
	c := opts.Constants
	if c == (Constants{}) {
		c = DefaultConstants()
	}
	params, err := NewParameters(c)
	if err != nil {
		return nil, err
	}

	spread := opts.InitSpread
	if spread == 0 {
		spread = DefaultInitSpread
	}
	if spread < 0 || math.IsNaN(spread) || math.IsInf(spread, 0) {
		return nil, fmt.Errorf("%w: init spread must be positive, got %g", dynamo.ErrParameterBounds, spread)
	}

	b := &Bicycle{
		params:    params,
		randomize: opts.Randomize,
		record:    opts.Record,
	}
	if opts.Goal != nil {
		g := *opts.Goal
		if math.IsNaN(g.X) || math.IsNaN(g.Y) || math.IsInf(g.X, 0) || math.IsInf(g.Y, 0) {
			return nil, fmt.Errorf("%w: goal must be finite, got (%g, %g)", dynamo.ErrParameterBounds, g.X, g.Y)
		}
		b.goal = &g
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	b.tilt = distuv.Normal{Mu: 0, Sigma: spread, Src: src}
	b.offset = distuv.Uniform{Min: -0.5 * params.L, Max: 0.5 * params.L, Src: src}

	b.Reset()
	return b, nil
}

// Reset puts the bicycle back near equilibrium and clears the history.
func (b *Bicycle) Reset() State {
	var s State
	L := b.params.L
	if b.randomize {
		s.Theta = clamp(b.tilt.Rand(), steerBounds)
		s.Omega = b.tilt.Rand()
		s.XF = s.XB + b.offset.Rand()
		dx := s.XF - s.XB
		s.YF = math.Sqrt(L*L-dx*dx) + s.YB
	} else {
		s.YF = L
	}

	s.Psi = heading(s.XF, s.YF, s.XB, s.YB, 0)
	if b.goal != nil {
		s.PsiG = goalAngle(s.Psi, *b.goal, s.XB, s.YB, 0)
	}

	b.state = s
	b.prev = Previous{XF: s.XF, YF: s.YF, Omega: s.Omega, PsiG: s.PsiG}
	b.last = Derivatives{}
	b.steps = 0
	b.history.clear()
	return s
}

// Step advances one tick. A non-finite action is rejected with a
// *dynamo.ActionError and leaves the state untouched.
func (b *Bicycle) Step(a Action) (State, error) {
	if !a.IsValid() {
		return b.state, &dynamo.ActionError{Step: b.steps, Torque: a.Torque, Displacement: a.Displacement}
	}

	cur := b.state
	b.prev = Previous{XF: cur.XF, YF: cur.YF, Omega: cur.Omega, PsiG: cur.PsiG}
	if b.record {
		b.history.append(cur)
	}

	b.state, b.last = Advance(b.params, cur, a, b.goal)
	b.steps++

	if len(b.observers) > 0 {
		x, u, t := b.Sensors(), a.Control(), b.Time()
		for _, o := range b.observers {
			o.OnStep(x, u, t)
		}
	}
	return b.state, nil
}

// PerformAction is Step without the returned state.
func (b *Bicycle) PerformAction(a Action) error {
	_, err := b.Step(a)
	return err
}

// AddObserver registers o to receive the sensor vector after every step.
func (b *Bicycle) AddObserver(o dynamo.Observer) {
	b.observers = append(b.observers, o)
}

func (b *Bicycle) State() State                 { return b.state }
func (b *Bicycle) Previous() Previous           { return b.prev }
func (b *Bicycle) LastDerivatives() Derivatives { return b.last }
func (b *Bicycle) Params() Parameters           { return b.params }
func (b *Bicycle) Steps() int                   { return b.steps }
func (b *Bicycle) HasGoal() bool                { return b.goal != nil }

// Time is the simulated time since the last reset.
func (b *Bicycle) Time() float64 {
	return float64(b.steps) * b.params.TimeStep
}

// Goal returns the configured goal, if any.
func (b *Bicycle) Goal() (Point, bool) {
	if b.goal == nil {
		return Point{}, false
	}
	return *b.goal, true
}

// Sensors returns a fresh copy of the sensor vector: SensorDim entries, or
// GoalSensorDim with a goal.
func (b *Bicycle) Sensors() dynamo.State {
	return b.state.Sensors(b.goal != nil)
}

// SensorDim is the length of the vector returned by Sensors.
func (b *Bicycle) SensorDim() int {
	if b.goal != nil {
		return GoalSensorDim
	}
	return SensorDim
}

func (b *Bicycle) Steer() float64 { return b.state.Theta }
func (b *Bicycle) Tilt() float64  { return b.state.Omega }
func (b *Bicycle) XF() float64    { return b.state.XF }
func (b *Bicycle) YF() float64    { return b.state.YF }
func (b *Bicycle) XB() float64    { return b.state.XB }
func (b *Bicycle) YB() float64    { return b.state.YB }
func (b *Bicycle) Psi() float64   { return b.state.Psi }
func (b *Bicycle) PsiG() float64  { return b.state.PsiG }

// SetRecording toggles the wheel-contact history. Turning it off keeps what
// was recorded so far.
func (b *Bicycle) SetRecording(on bool) { b.record = on }
func (b *Bicycle) Recording() bool      { return b.record }

func (b *Bicycle) Trajectory() *Trajectory { return &b.history }

func (b *Bicycle) FrontX() iter.Seq[float64] { return b.history.FrontX() }
func (b *Bicycle) FrontY() iter.Seq[float64] { return b.history.FrontY() }
func (b *Bicycle) RearX() iter.Seq[float64]  { return b.history.RearX() }
func (b *Bicycle) RearY() iter.Seq[float64]  { return b.history.RearY() }
