package bicycle

import (
	"math"

	"github.com/san-kum/bikesim/internal/dynamo"
)

// Sensor vector layout.
const (
	IdxTheta = iota
	IdxThetaDot
	IdxOmega
	IdxOmegaDot
	IdxOmegaDDot
	IdxXF
	IdxYF
	IdxXB
	IdxYB
	IdxPsi
	IdxPsiG

	SensorDim     = IdxPsiG
	GoalSensorDim = IdxPsiG + 1
)

// SensorNames labels the sensor vector, in order.
var SensorNames = []string{
	"theta", "thetad", "omega", "omegad", "omegadd",
	"xf", "yf", "xb", "yb", "psi", "psig",
}

// Point is a position in the ground plane.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// State is the complete physical state at one instant. PsiG only carries
// meaning when the owning Bicycle has a goal.
type State struct {
	Theta     float64 // handlebar angle
	ThetaDot  float64
	Omega     float64 // roll angle from vertical
	OmegaDot  float64
	OmegaDDot float64 // last computed, never fed back

	XF, YF float64 // front contact
	XB, YB float64 // rear contact

	Psi  float64 // heading
	PsiG float64 // heading minus bearing to goal
}

// Sensors flattens the state in sensor order. withGoal selects the 11-entry
// layout.
func (s State) Sensors(withGoal bool) dynamo.State {
	x := dynamo.State{
		s.Theta, s.ThetaDot, s.Omega, s.OmegaDot, s.OmegaDDot,
		s.XF, s.YF, s.XB, s.YB, s.Psi,
	}
	if withGoal {
		x = append(x, s.PsiG)
	}
	return x
}

// FromSensors is the inverse of Sensors. Missing trailing entries read as 0.
func FromSensors(x dynamo.State) State {
	return State{
		Theta:     x.At(IdxTheta),
		ThetaDot:  x.At(IdxThetaDot),
		Omega:     x.At(IdxOmega),
		OmegaDot:  x.At(IdxOmegaDot),
		OmegaDDot: x.At(IdxOmegaDDot),
		XF:        x.At(IdxXF),
		YF:        x.At(IdxYF),
		XB:        x.At(IdxXB),
		YB:        x.At(IdxYB),
		Psi:       x.At(IdxPsi),
		PsiG:      x.At(IdxPsiG),
	}
}

func (s State) Front() Point { return Point{X: s.XF, Y: s.YF} }
func (s State) Rear() Point  { return Point{X: s.XB, Y: s.YB} }

// Wheelbase is the current distance between the contact points.
func (s State) Wheelbase() float64 {
	return math.Hypot(s.XF-s.XB, s.YF-s.YB)
}

func (s State) IsValid() bool {
	return s.Sensors(true).IsValid()
}

// Previous holds the values the last Step started from.
type Previous struct {
	XF, YF float64
	Omega  float64
	PsiG   float64
}

// Action is one tick's control input.
type Action struct {
	Torque       float64 // handlebar torque T, N·m
	Displacement float64 // rider lean d, m
}

// ActionFrom reads (T, d) from a control vector.
func ActionFrom(u dynamo.Control) (Action, error) {
	if len(u) != 2 {
		return Action{}, dynamo.ErrDimensionMismatch
	}
	return Action{Torque: u[0], Displacement: u[1]}, nil
}

func (a Action) Control() dynamo.Control {
	return dynamo.Control{a.Torque, a.Displacement}
}

func (a Action) IsValid() bool {
	return !math.IsNaN(a.Torque) && !math.IsInf(a.Torque, 0) &&
		!math.IsNaN(a.Displacement) && !math.IsInf(a.Displacement, 0)
}
