package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

// GoalDistance is the closest the front wheel came to the goal.
type GoalDistance struct {
	goal []float64
	best float64
}

func NewGoalDistance(goal bicycle.Point) *GoalDistance {
	return &GoalDistance{goal: []float64{goal.X, goal.Y}, best: math.Inf(1)}
}

func (g *GoalDistance) Name() string { return "goal_distance" }

func (g *GoalDistance) Observe(x dynamo.State, u dynamo.Control, t float64) {
	front := []float64{x.At(bicycle.IdxXF), x.At(bicycle.IdxYF)}
	g.best = math.Min(g.best, floats.Distance(front, g.goal, 2))
}

// Value is +Inf before the first observation.
func (g *GoalDistance) Value() float64 { return g.best }
func (g *GoalDistance) Reset()         { g.best = math.Inf(1) }

// PathLength is the distance covered by the rear contact.
type PathLength struct {
	last   []float64
	length float64
}

func NewPathLength() *PathLength { return &PathLength{} }

func (p *PathLength) Name() string { return "path_length" }

func (p *PathLength) Observe(x dynamo.State, u dynamo.Control, t float64) {
	rear := []float64{x.At(bicycle.IdxXB), x.At(bicycle.IdxYB)}
	if p.last != nil {
		p.length += floats.Distance(rear, p.last, 2)
	}
	p.last = rear
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.last = nil
	p.length = 0
}
