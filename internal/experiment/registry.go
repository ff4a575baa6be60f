package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/control"
	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/metrics"
)

type Registry struct {
	controllers map[string]func(map[string]float64) dynamo.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]func(map[string]float64) dynamo.Controller),
	}

	r.controllers["none"] = func(params map[string]float64) dynamo.Controller {
		return control.NewNone()
	}
	r.controllers["pid"] = func(params map[string]float64) dynamo.Controller {
		kp := params["kp"]
		ki := params["ki"]
		kd := params["kd"]
		target := params["target"]
		return control.NewPID(kp, ki, kd, target, int(params["index"]))
	}
	r.controllers["balance"] = func(params map[string]float64) dynamo.Controller {
		b := control.NewBalance()
		set := func(dst *float64, key string) {
			if v, ok := params[key]; ok {
				*dst = v
			}
		}
		set(&b.RollGain, "roll_gain")
		set(&b.RateGain, "rate_gain")
		set(&b.SteerKp, "kp")
		set(&b.SteerKd, "kd")
		set(&b.LeanGain, "lean_gain")
		return b
	}
	r.controllers["lqr"] = func(params map[string]float64) dynamo.Controller {
		return control.NewBicycleLQR()
	}
	r.controllers["random"] = func(params map[string]float64) dynamo.Controller {
		return control.NewRandom(uint64(params["seed"]))
	}
	r.controllers["manual"] = func(params map[string]float64) dynamo.Controller {
		return control.NewManual()
	}

	return r
}

func (r *Registry) GetController(name string, params map[string]float64) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(params), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics is the metric set recorded for every run. Goal distance is
// added when goal is set.
func (r *Registry) DefaultMetrics(p bicycle.Parameters, goal *bicycle.Point) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewControlEffort(),
		metrics.NewUpright(metrics.FallAngle),
		metrics.NewFallTime(metrics.FallAngle),
		metrics.NewMaxTilt(),
		metrics.NewPathLength(),
		metrics.NewRollEnergy(p),
	}
	if goal != nil {
		ms = append(ms, metrics.NewGoalDistance(*goal))
	}
	return ms
}
