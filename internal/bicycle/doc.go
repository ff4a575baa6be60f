// Package bicycle implements the Randløv bicycle: a fixed rigid-body model of
// a ridden bicycle advanced in discrete time, usable as the transition
// function of a reinforcement-learning environment.
//
// A [Bicycle] owns its [Parameters] and [State] exclusively:
//
//	bike, err := bicycle.New(bicycle.Options{Randomize: true, Seed: 7})
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < 1000; i++ {
//	    if _, err := bike.Step(bicycle.Action{Torque: 0.5}); err != nil {
//	        return err
//	    }
//	}
//	sensors := bike.Sensors() // theta, thetad, omega, ... psi, [psig]
//
// One tick evaluates the equations of motion, integrates with explicit Euler
// (omegad, omega, thetad, theta in that order), clamps the handlebar to
// ±[MaxHandlebar], advances the wheel contact points, pulls the wheelbase
// back toward L when it drifts and finally recomputes the heading psi and,
// with a goal configured, the bearing psig.
//
// # Singularities
//
// Step never fails on the state. A straight handlebar uses a 1e8 m turning
// radius, an arcsin argument above one sweeps a quarter turn, and the
// heading is resolved with atan2 plus explicit degenerate cases. Only
// non-finite actions are rejected, with a *dynamo.ActionError.
//
// # Thread Safety
//
// A Bicycle is not safe for concurrent use. Independent instances share
// nothing and may run on separate goroutines.
package bicycle
