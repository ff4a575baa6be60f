package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/bikesim/internal/config"
)

func newSimCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newSimCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	def := config.DefaultConfig()
	if cfg.Controller != def.Controller || cfg.Duration != def.Duration || cfg.Goal != nil {
		t.Errorf("unset flags changed the defaults: %+v", cfg)
	}
}

func TestResolveConfigPresetThenFlags(t *testing.T) {
	cfg, err := resolveConfig(newSimCmd(t, "--preset", "legacy", "--seed", "9", "--goal-y", "50"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Constants.TimeStep != 0.025 || cfg.Constants.Gravity != 9.81 {
		t.Errorf("legacy constants not applied: %+v", cfg.Constants)
	}
	if cfg.Seed != 9 {
		t.Errorf("seed = %d, want 9", cfg.Seed)
	}
	if cfg.Goal == nil || cfg.Goal.X != 0 || cfg.Goal.Y != 50 {
		t.Errorf("goal = %v, want (0, 50)", cfg.Goal)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bike.yaml")
	file := config.DefaultConfig()
	file.Controller = "lqr"
	file.Duration = 4
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(newSimCmd(t, "--config", path, "--time", "2"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Controller != "lqr" {
		t.Errorf("controller = %q, want lqr from file", cfg.Controller)
	}
	if cfg.Duration != 2 {
		t.Errorf("duration = %g, want flag value 2", cfg.Duration)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	if _, err := resolveConfig(newSimCmd(t, "--preset", "nope")); err == nil {
		t.Error("unknown preset accepted")
	}
	if _, err := resolveConfig(newSimCmd(t, "--time", "-1")); err == nil {
		t.Error("negative duration accepted")
	}
	if _, err := resolveConfig(newSimCmd(t, "--config", filepath.Join(os.TempDir(), "missing-bikesim.yaml"))); err == nil {
		t.Error("missing config file accepted")
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"roll_gain=1, 2,3", "kd=0.5"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "roll_gain" || names[1] != "kd" {
		t.Errorf("names = %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][1] != 2 || ranges[1][0] != 0.5 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"kp", "=1", "kp=", "kp=a,b"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("parseGrid(%q) accepted", bad)
		}
	}
}
