package bicycle

import "math"

// Derivatives are the intermediate quantities of one tick.
type Derivatives struct {
	RF, RB, RCM float64
	Phi         float64 // total lean, omega plus rider offset
	OmegaDDot   float64
	ThetaDDot   float64
	Corrected   bool // wheelbase correction fired
}

// Advance computes the state one tick after s under action a. It is a pure
// function of its arguments; the incoming OmegaDDot is ignored. goal may be
// nil, in which case PsiG is carried over unchanged.
func Advance(p Parameters, s State, a Action, goal *Point) (State, Derivatives) {
	var d Derivatives

	theta, thetad := s.Theta, s.ThetaDot
	omega, omegad := s.Omega, s.OmegaDot

	d.RF, d.RB, d.RCM = turningRadii(&p, theta)
	d.Phi = omega + math.Atan(a.Displacement/p.H)

	v2 := p.Velocity * p.Velocity
	d.OmegaDDot = (p.M*p.H*p.Gravity*math.Sin(d.Phi) -
		math.Cos(d.Phi)*(p.Idc*p.Sigmad*thetad+
			sign(theta)*v2*(p.Md*p.R*(1/d.RF+1/d.RB)+p.M*p.H/d.RCM))) / p.Itot
	d.ThetaDDot = (a.Torque - p.Idv*p.Sigmad*omegad) / p.Idl

	// Order matters: omega takes the new omegad, theta the new thetad.
	omegad += d.OmegaDDot * p.TimeStep
	omega += omegad * p.TimeStep
	thetad += d.ThetaDDot * p.TimeStep
	theta += thetad * p.TimeStep

	next := s
	next.Theta = clamp(theta, steerBounds)
	next.ThetaDot = thetad
	next.Omega = omega
	next.OmegaDot = omegad
	next.OmegaDDot = d.OmegaDDot

	advanceContacts(&p, &next, s.Psi, d.RF, d.RB)
	d.Corrected = correctWheelbase(&p, &next)

	next.Psi = heading(next.XF, next.YF, next.XB, next.YB, s.Psi)
	if goal != nil {
		next.PsiG = goalAngle(next.Psi, *goal, next.XB, next.YB, s.PsiG)
	}
	return next, d
}
