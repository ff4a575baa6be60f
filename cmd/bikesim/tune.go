package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/bikesim/internal/optim"
)

var (
	tuneParams   []string
	tuneMetric   string
	tuneMinimize bool
	tuneTop      int
	tuneRuns     int
)

// parseGrid reads "name=v1,v2,..." args.
func parseGrid(args []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad grid %q, want name=v1,v2", arg)
		}
		var vals []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in %q: %w", arg, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(tuneParams)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no --grid given")
	}

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = !tuneMinimize
	if workers > 0 {
		g.SetLimit(workers)
	}

	fmt.Printf("tuning %s on %s over %d grid points x %d runs...\n", cfg.Controller, tuneMetric, len(g.Points()), tuneRuns)
	start := time.Now()
	best, trials, err := g.Search(cmd.Context(), optim.EnsembleObjective(cfg, tuneMetric, tuneRuns, logger))
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(tuneMetric))
	for i, tr := range trials {
		if i == tuneTop {
			break
		}
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", tr.Params[n])
		}
		fmt.Fprintf(w, "%.4f\n", tr.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	logger.Info().Interface("params", best.Params).Float64(tuneMetric, best.Value).Msg("best parameters")
	return nil
}
