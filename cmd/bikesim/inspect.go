package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bikesim/internal/analysis"
	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/export"
	"github.com/san-kum/bikesim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, logger)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tDT\tCTRL\tSEED\tFALL")

	for _, run := range runs {
		fall := "-"
		if ft, ok := run.Metrics["fall_time"]; ok && ft >= 0 {
			fall = fmt.Sprintf("%.2fs", ft)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%s\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Controller,
			run.Seed,
			fall,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, logger)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	for _, name := range plotVars {
		idx := slices.Index(bicycle.SensorNames, name)
		if idx < 0 || idx >= len(states[0]) {
			return fmt.Errorf("unknown sensor %q (available: %v)", name, bicycle.SensorNames[:len(states[0])])
		}

		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][idx]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func loadSensors(st *storage.Store, runID string) ([]dynamo.State, error) {
	rows, _, err := st.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data in run %s", runID)
	}
	states := make([]dynamo.State, len(rows))
	for i, r := range rows {
		states[i] = r
	}
	return states, nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, logger)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, err := loadSensors(st, runID)
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(states, xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("state dimension %d too small for axes %d, %d", len(states[0]), xAxis, yAxis)
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", bicycle.SensorNames[xAxis], bicycle.SensorNames[yAxis])
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 20))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, logger)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, err := loadSensors(st, runID)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	roll := analysis.Series(states, bicycle.IdxOmega)
	spec, err := analysis.RollSpectrum(roll, meta.Dt)
	if err != nil {
		return err
	}

	plotData := spec.Power[:max(2, len(spec.Power)/4)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("roll power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := spec.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SENSOR\tMEAN\tSTD\tRMS\tMIN\tMAX")
	for _, idx := range []int{bicycle.IdxTheta, bicycle.IdxOmega, bicycle.IdxOmegaDot, bicycle.IdxPsi} {
		s := analysis.Describe(analysis.Series(states, idx))
		fmt.Fprintf(w, "%s\t%.5f\t%.5f\t%.5f\t%.5f\t%.5f\n",
			bicycle.SensorNames[idx], s.Mean, s.Std, s.RMS, s.Min, s.Max)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, logger)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, logger)
	_, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := storage.ExportCSV(outFile, result); err != nil {
			return err
		}
		logger.Info().Str("path", outFile).Msg("csv exported")
		return nil
	}
	return storage.WriteStatesCSV(os.Stdout, result)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, logger)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := storage.ExportJSON(outFile, meta, result); err != nil {
			return err
		}
		logger.Info().Str("path", outFile).Msg("json exported")
		return nil
	}
	return storage.WriteJSON(os.Stdout, meta, result)
}

func exportPNG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, logger)
	meta, result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	dir := outDir
	if dir == "" {
		dir = st.Dir(runID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	written, err := export.SaveRunPlots(dir, result, meta.Goal)
	if err != nil {
		return err
	}

	if withSVG {
		svg := export.TrackToSVG(result.Trajectory, 600)
		if svg == "" {
			logger.Warn().Str("run", runID).Msg("no recorded track, skipping svg")
		} else {
			path := filepath.Join(dir, "tracks.svg")
			if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
				return err
			}
			written = append(written, path)
		}
	}

	for _, p := range written {
		fmt.Println(p)
	}
	return nil
}
