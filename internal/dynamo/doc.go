// Package dynamo provides the shared primitives of the bicycle simulator.
//
// The package defines the vocabulary the other packages speak:
//
//   - [State]: a flat sensor vector (theta, thetad, omega, ... psi, [psig])
//   - [Control]: an action vector, (T, d) for the bicycle
//   - [Controller]: policy mapping sensors to an action
//   - [Metric]: per-step observation reduced to a scalar
//   - [Observer]: push notification after every simulation tick
//
// # Thread Safety
//
// None of the types here carry shared state. A bicycle instance, its
// controller and its metrics belong to one goroutine; run independent
// instances in parallel with sim.Ensemble.
package dynamo
