package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

const (
	DefaultModel      = "bicycle"
	DefaultController = "balance"
	DefaultDuration   = 10.0
	DefaultKp         = 10.0
	DefaultKi         = 0.0
	DefaultKd         = 1.5
	DefaultRollGain   = 3.0
	DefaultRateGain   = 1.0
)

type Config struct {
	Model            string            `yaml:"model"`
	Controller       string            `yaml:"controller"`
	Duration         float64           `yaml:"duration"`
	Steps            int               `yaml:"steps,omitempty"`
	Seed             uint64            `yaml:"seed"`
	Randomize        bool              `yaml:"randomize"`
	InitSpread       float64           `yaml:"init_spread,omitempty"`
	Record           bool              `yaml:"record"`
	Goal             *bicycle.Point    `yaml:"goal,omitempty"`
	Constants        bicycle.Constants `yaml:"constants"`
	ControllerParams ControllerConfig  `yaml:"controller_params"`
}

// ControllerConfig tunes the PID and balance controllers. Index selects the
// sensor the PID regulates; Kp and Kd double as the balance steering gains.
type ControllerConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
	Index  int     `yaml:"index"`

	RollGain float64 `yaml:"roll_gain"`
	RateGain float64 `yaml:"rate_gain"`
	LeanGain float64 `yaml:"lean_gain,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Controller: DefaultController,
		Duration:   DefaultDuration,
		Record:     true,
		Constants:  bicycle.DefaultConstants(),
		ControllerParams: ControllerConfig{
			Kp:       DefaultKp,
			Ki:       DefaultKi,
			Kd:       DefaultKd,
			Index:    bicycle.IdxOmega,
			RollGain: DefaultRollGain,
			RateGain: DefaultRateGain,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that can be checked without building a run.
func (c *Config) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", dynamo.ErrParameterBounds, c.Steps)
	}
	if c.Steps == 0 && (c.Duration <= 0 || math.IsInf(c.Duration, 0) || math.IsNaN(c.Duration)) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, c.Duration)
	}
	if c.InitSpread < 0 {
		return fmt.Errorf("%w: init_spread must not be negative, got %f", dynamo.ErrParameterBounds, c.InitSpread)
	}
	if c.ControllerParams.Index < 0 || c.ControllerParams.Index >= bicycle.GoalSensorDim {
		return fmt.Errorf("%w: controller index %d outside sensor vector", dynamo.ErrParameterBounds, c.ControllerParams.Index)
	}
	return c.Constants.Validate()
}

// BicycleOptions converts the file layout into constructor options.
func (c *Config) BicycleOptions() bicycle.Options {
	opts := bicycle.Options{
		Constants:  c.Constants,
		Randomize:  c.Randomize,
		InitSpread: c.InitSpread,
		Seed:       c.Seed,
		Record:     c.Record,
	}
	if c.Goal != nil {
		g := *c.Goal
		opts.Goal = &g
	}
	return opts
}

// TotalSteps resolves Steps or Duration against the configured time step.
func (c *Config) TotalSteps() int {
	if c.Steps > 0 {
		return c.Steps
	}
	return int(math.Round(c.Duration / c.Constants.TimeStep))
}

func (c *Config) GetControllerParams() map[string]float64 {
	return map[string]float64{
		"kp":     c.ControllerParams.Kp,
		"ki":     c.ControllerParams.Ki,
		"kd":     c.ControllerParams.Kd,
		"target": c.ControllerParams.Target,
		"index":  float64(c.ControllerParams.Index),
		"seed":   float64(c.Seed),

		"roll_gain": c.ControllerParams.RollGain,
		"rate_gain": c.ControllerParams.RateGain,
		"lean_gain": c.ControllerParams.LeanGain,
	}
}

// SetParam sets a controller parameter by its GetControllerParams name.
func (c *ControllerConfig) SetParam(name string, v float64) error {
	switch name {
	case "kp":
		c.Kp = v
	case "ki":
		c.Ki = v
	case "kd":
		c.Kd = v
	case "target":
		c.Target = v
	case "index":
		c.Index = int(v)
	case "roll_gain":
		c.RollGain = v
	case "rate_gain":
		c.RateGain = v
	case "lean_gain":
		c.LeanGain = v
	default:
		return fmt.Errorf("unknown controller parameter: %s", name)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Goal != nil {
		g := *c.Goal
		out.Goal = &g
	}
	return &out
}
