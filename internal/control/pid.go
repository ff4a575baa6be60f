package control

import (
	"github.com/san-kum/bikesim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r1"
)

// PID computes handlebar torque from the error on the sensor at Index.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64
	Index  int
	Bounds r1.Interval

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64, index int) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Index:  index,
		Bounds: TorqueBounds,
		first:  true,
	}
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	if p.Index < 0 || p.Index >= len(x) {
		return dynamo.Control{0, 0}
	}

	err := p.Target - x[p.Index]

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.out(p.Kp * err)
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t

		return p.out(u)
	}
	return p.out(p.Kp * err)
}

func (p *PID) out(u float64) dynamo.Control {
	return dynamo.Control{clip(u, p.Bounds), 0}
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	}
}
