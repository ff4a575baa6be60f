package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/logging"
)

var (
	dataDir  string
	logLevel string
	logFile  string
	logger   = zerolog.Nop()

	// Simulation flags, shared by run, live, ensemble and bench.
	configFile string
	preset     string
	controller string
	duration   float64
	steps      int
	dt         float64
	gravity    float64
	seed       uint64
	randomize  bool
	spread     float64
	goalX      float64
	goalY      float64
	noRecord   bool
	kp         float64
	ki         float64
	kd         float64
	target     float64
	index      int

	// Ensemble
	numRuns int
	workers int

	// Inspection
	plotVars []string
	xAxis    int
	yAxis    int
	outDir   string
	outFile  string
	withSVG  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bikesim",
		Short:         "bicycle balancing and riding simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bikesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot sensor time series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotVars, "var", []string{"theta", "omega", "psi"}, "sensors to plot")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", bicycle.IdxOmega, "sensor index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", bicycle.IdxOmegaDot, "sensor index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "roll spectrum and sensor statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "write to file instead of stdout")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render wheel tracks and roll/steer plots",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVar(&outDir, "out", "", "output directory (default: the run directory)")
	exportPNGCmd.Flags().BoolVar(&withSVG, "svg", false, "also write tracks.svg")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "ride the bicycle with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run seeded randomized copies in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 16, "number of runs")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "runs in flight (0: GOMAXPROCS)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the step function",
		Args:  cobra.NoArgs,
		RunE:  benchModel,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search controller gains over randomized runs",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "grid", nil, "parameter grid, name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "upright", "metric to optimize")
	tuneCmd.Flags().BoolVar(&tuneMinimize, "minimize", false, "keep the smallest score")
	tuneCmd.Flags().IntVar(&tuneRuns, "runs", 8, "randomized runs per grid point")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "grid points in flight (0: GOMAXPROCS)")
	tuneCmd.Flags().IntVar(&tuneTop, "top", 10, "rows to print")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, exportCSVCmd,
		exportJSONCmd, exportPNGCmd, liveCmd, ensembleCmd, tuneCmd, benchCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogging() error {
	if logFile == "" {
		logger = logging.New(logLevel, os.Stderr)
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logger = logging.New(logLevel, os.Stderr, f)
	return nil
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&controller, "controller", "balance", "controller")
	f.Float64Var(&duration, "time", 10.0, "duration in seconds")
	f.IntVar(&steps, "steps", 0, "number of steps (overrides --time)")
	f.Float64Var(&dt, "dt", bicycle.DefaultTimeStep, "timestep")
	f.Float64Var(&gravity, "gravity", bicycle.DefaultGravity, "gravitational acceleration")
	f.Uint64Var(&seed, "seed", 0, "random seed")
	f.BoolVar(&randomize, "randomize", false, "perturb the initial state")
	f.Float64Var(&spread, "spread", bicycle.DefaultInitSpread, "initial perturbation std (rad)")
	f.Float64Var(&goalX, "goal-x", 0, "goal x (enables psig)")
	f.Float64Var(&goalY, "goal-y", 0, "goal y (enables psig)")
	f.BoolVar(&noRecord, "no-record", false, "do not record wheel tracks")
	f.Float64Var(&kp, "kp", 10.0, "pid kp")
	f.Float64Var(&ki, "ki", 0.0, "pid ki")
	f.Float64Var(&kd, "kd", 1.5, "pid kd")
	f.Float64Var(&target, "target", 0.0, "pid target")
	f.IntVar(&index, "index", bicycle.IdxOmega, "pid sensor index")
}
