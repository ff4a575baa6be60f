// Package control provides controllers that drive the bicycle.
//
// Every controller implements [dynamo.Controller] and returns a two-entry
// control vector (T, d): handlebar torque and rider displacement.
//
//   - [None]: no input, the bicycle falls on its own
//   - [PID]: torque from the error on one sensor
//   - [Balance]: cascaded steer-into-the-fall balancer
//   - [LQR]: linear state feedback over the sensor vector
//   - [Random]: uniform actions within the actuator limits
//   - [Manual]: whatever was last set, for interactive use
//
// # Usage
//
//	ctrl := control.NewBalance()
//	s := sim.New(bike, ctrl)
//
// Outputs are clipped to [TorqueBounds] and [DisplacementBounds].
// Controllers with episode state implement [dynamo.Resetter].
package control
