package bicycle

import (
	"fmt"
	"math"

	"github.com/san-kum/bikesim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	DefaultGravity  = 9.82
	DefaultTimeStep = 0.01
	// 10 km/h.
	DefaultVelocity = 10.0 * 1000.0 / 3600.0

	// MaxHandlebar is the steering limit, 80 degrees.
	MaxHandlebar = 1.3963

	// DriftTolerance is the wheelbase error that triggers a correction.
	DriftTolerance = 0.01

	// DefaultInitSpread is the standard deviation of randomized theta and
	// omega at reset, one degree.
	DefaultInitSpread = math.Pi / 180

	infiniteRadius = 1e8
)

// Constants are the physical inputs of the model. Distances in metres,
// masses in kilograms.
type Constants struct {
	Gravity  float64 `yaml:"gravity" json:"gravity"`
	TimeStep float64 `yaml:"dt" json:"dt"`
	Velocity float64 `yaml:"velocity" json:"velocity"`

	C   float64 `yaml:"c" json:"c"`     // front contact to centre of mass, horizontal
	DCM float64 `yaml:"dcm" json:"dcm"` // bicycle CM to rider CM, vertical
	H   float64 `yaml:"h" json:"h"`     // centre of mass height
	L   float64 `yaml:"l" json:"l"`     // wheelbase
	R   float64 `yaml:"r" json:"r"`     // tyre radius

	Mc float64 `yaml:"mc" json:"mc"` // bicycle
	Md float64 `yaml:"md" json:"md"` // tyre
	Mp float64 `yaml:"mp" json:"mp"` // rider
}

func DefaultConstants() Constants {
	return Constants{
		Gravity:  DefaultGravity,
		TimeStep: DefaultTimeStep,
		Velocity: DefaultVelocity,
		C:        0.66,
		DCM:      0.30,
		H:        0.94,
		L:        1.11,
		R:        0.34,
		Mc:       15.0,
		Md:       1.7,
		Mp:       60.0,
	}
}

// Validate rejects non-finite values and physically meaningless ones.
// Gravity, velocity and the two CM offsets may be zero.
func (c Constants) Validate() error {
	fields := []struct {
		name      string
		value     float64
		allowZero bool
	}{
		{"gravity", c.Gravity, true},
		{"dt", c.TimeStep, false},
		{"velocity", c.Velocity, true},
		{"c", c.C, true},
		{"dcm", c.DCM, true},
		{"h", c.H, false},
		{"l", c.L, false},
		{"r", c.R, false},
		{"mc", c.Mc, false},
		{"md", c.Md, false},
		{"mp", c.Mp, false},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %g", dynamo.ErrParameterBounds, f.name, f.value)
		}
		if f.value < 0 || (f.value == 0 && !f.allowZero) {
			return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrParameterBounds, f.name, f.value)
		}
	}
	return nil
}

// Parameters are Constants plus the quantities derived from them once at
// construction. Treat as immutable.
type Parameters struct {
	Constants

	M      float64 // bicycle + rider
	Idc    float64
	Idv    float64
	Idl    float64
	Itot   float64
	Sigmad float64 // tyre angular velocity
}

var steerBounds = r1.Interval{Min: -MaxHandlebar, Max: MaxHandlebar}

func NewParameters(c Constants) (Parameters, error) {
	if err := c.Validate(); err != nil {
		return Parameters{}, err
	}
	r2 := c.R * c.R
	return Parameters{
		Constants: c,
		M:         c.Mc + c.Mp,
		Idc:       c.Md * r2,
		Idv:       1.5 * c.Md * r2,
		Idl:       0.5 * c.Md * r2,
		Itot:      13.0/3.0*c.Mc*c.H*c.H + c.Mp*(c.H+c.DCM)*(c.H+c.DCM),
		Sigmad:    c.Velocity / c.R,
	}, nil
}

// SteerBounds is the closed interval theta is clamped to.
func SteerBounds() r1.Interval {
	return steerBounds
}

func (p Parameters) SteerBounds() r1.Interval {
	return steerBounds
}

// Distance covered by either contact point in one tick.
func (p Parameters) stride() float64 {
	return p.Velocity * p.TimeStep
}

func clamp(x float64, iv r1.Interval) float64 {
	return math.Max(iv.Min, math.Min(iv.Max, x))
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
