package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/config"
	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/experiment"
	"github.com/san-kum/bikesim/internal/logging"
	"github.com/san-kum/bikesim/internal/sim"
	"github.com/san-kum/bikesim/internal/storage"
	"github.com/san-kum/bikesim/internal/viz"
)

// resolveConfig layers defaults, then a preset, then a config file, then
// the flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		logger.Debug().Str("preset", preset).Msg("preset applied")
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Debug().Str("path", configFile).Msg("config loaded")
	}

	flags := cmd.Flags()
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("time") {
		cfg.Duration = duration
		cfg.Steps = 0
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Constants.TimeStep = dt
	}
	if flags.Changed("gravity") {
		cfg.Constants.Gravity = gravity
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("randomize") {
		cfg.Randomize = randomize
	}
	if flags.Changed("spread") {
		cfg.InitSpread = spread
	}
	if flags.Changed("goal-x") || flags.Changed("goal-y") {
		cfg.Goal = &bicycle.Point{X: goalX, Y: goalY}
	}
	if flags.Changed("no-record") {
		cfg.Record = !noRecord
	}
	if flags.Changed("kp") {
		cfg.ControllerParams.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.ControllerParams.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.ControllerParams.Kd = kd
	}
	if flags.Changed("target") {
		cfg.ControllerParams.Target = target
	}
	if flags.Changed("index") {
		cfg.ControllerParams.Index = index
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s simulation (%s)...\n", cfg.Model, cfg.Controller)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		if !errors.Is(err, dynamo.ErrContextCanceled) || result == nil {
			return err
		}
		logger.Warn().Int("steps", result.StepsTaken).Msg("interrupted, saving partial run")
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	bike, err := bicycle.New(cfg.BicycleOptions())
	if err != nil {
		return err
	}
	ctrl, err := experiment.NewRegistry().GetController(cfg.Controller, cfg.GetControllerParams())
	if err != nil {
		return err
	}

	// The terminal belongs to the renderer; only a log file gets entries.
	liveLog := zerolog.Nop()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		liveLog = zerolog.New(f).Level(logging.ParseLevel(logLevel)).With().Timestamp().Logger()
	}

	name := cfg.Model
	if preset != "" {
		name = preset
	}
	m := viz.NewModel(bike, ctrl, name, liveLog)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Record = false

	exp := experiment.New(cfg, logger)

	fmt.Printf("running %d randomized %s runs (%s)...\n", numRuns, cfg.Model, cfg.Controller)
	start := time.Now()
	results, err := exp.RunEnsemble(cmd.Context(), numRuns, workers)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX\tN")
	for _, s := range sim.Summarize(results) {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%d\n", s.Name, s.Mean, s.Std, s.Min, s.Max, s.N)
	}
	return w.Flush()
}

func benchModel(cmd *cobra.Command, args []string) error {
	durations := []float64{1.0, 10.0, 60.0}
	dts := []float64{0.001, bicycle.DefaultTimeStep, 0.025}

	fmt.Printf("benchmarking bicycle (balance controller)\n\n")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, dt := range dts {
			cfg := config.DefaultConfig()
			cfg.Duration = dur
			cfg.Constants.TimeStep = dt
			cfg.Record = false
			cfg.Randomize = true
			cfg.Seed = 42

			exp := experiment.New(cfg, zerolog.Nop())
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, dt, result.StepsTaken, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCONTROLLER\tDURATION\tDT\tRANDOMIZE\tGOAL")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		goal := "-"
		if p.Goal != nil {
			goal = fmt.Sprintf("(%g, %g)", p.Goal.X, p.Goal.Y)
		}
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%.3fs\t%v\t%s\n",
			name, p.Controller, p.Duration, p.Constants.TimeStep, p.Randomize, goal)
	}
	return w.Flush()
}
