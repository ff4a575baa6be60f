package config

import (
	"sort"

	"github.com/san-kum/bikesim/internal/bicycle"
)

func preset(f func(c *Config)) *Config {
	c := DefaultConfig()
	f(c)
	return c
}

var Presets = map[string]*Config{
	"upright": preset(func(c *Config) {
		c.Controller = "balance"
	}),
	"perturbed": preset(func(c *Config) {
		c.Controller = "balance"
		c.Randomize = true
		c.InitSpread = 3 * bicycle.DefaultInitSpread
		c.Seed = 1
	}),
	"freefall": preset(func(c *Config) {
		c.Controller = "none"
		c.Randomize = true
		c.Duration = 3
		c.Seed = 1
	}),
	"goal": preset(func(c *Config) {
		c.Controller = "balance"
		c.Randomize = true
		c.Duration = 30
		c.Goal = &bicycle.Point{X: 0, Y: 1000}
		c.Seed = 1
	}),
	"random-rider": preset(func(c *Config) {
		c.Controller = "random"
		c.Randomize = true
		c.Duration = 5
		c.Seed = 1
	}),
	"legacy": preset(func(c *Config) {
		c.Controller = "none"
		c.Randomize = true
		c.Constants.Gravity = 9.81
		c.Constants.TimeStep = 0.025
	}),
}

// GetPreset returns a copy of the named preset, nil if unknown.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
