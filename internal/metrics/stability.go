package metrics

import (
	"math"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

// FallAngle is the roll angle past which the bicycle counts as fallen,
// 12 degrees.
const FallAngle = 12 * math.Pi / 180

// Upright is the fraction of samples with |omega| below the threshold.
type Upright struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewUpright(threshold float64) *Upright {
	return &Upright{
		name:      "upright",
		threshold: threshold,
	}
}

func (s *Upright) Name() string {
	return s.name
}

func (s *Upright) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if math.Abs(x.At(bicycle.IdxOmega)) >= s.threshold {
		s.violations++
	}
}

func (s *Upright) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Upright) Reset() {
	s.violations = 0
	s.samples = 0
}

// FallTime is the first time |omega| reaches the threshold, -1 if never.
type FallTime struct {
	threshold float64
	fell      bool
	at        float64
}

func NewFallTime(threshold float64) *FallTime {
	return &FallTime{threshold: threshold}
}

func (f *FallTime) Name() string { return "fall_time" }

func (f *FallTime) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if !f.fell && math.Abs(x.At(bicycle.IdxOmega)) >= f.threshold {
		f.fell = true
		f.at = t
	}
}

func (f *FallTime) Value() float64 {
	if !f.fell {
		return -1
	}
	return f.at
}

func (f *FallTime) Reset() {
	f.fell = false
	f.at = 0
}

type MaxTilt struct {
	max float64
}

func NewMaxTilt() *MaxTilt { return &MaxTilt{} }

func (m *MaxTilt) Name() string { return "max_tilt" }

func (m *MaxTilt) Observe(x dynamo.State, u dynamo.Control, t float64) {
	m.max = math.Max(m.max, math.Abs(x.At(bicycle.IdxOmega)))
}

func (m *MaxTilt) Value() float64 { return m.max }
func (m *MaxTilt) Reset()         { m.max = 0 }
