package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/sim"
)

type ExportData struct {
	Model      string             `json:"model"`
	Controller string             `json:"controller"`
	Seed       uint64             `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Goal       *bicycle.Point     `json:"goal,omitempty"`
	Sensors    []string           `json:"sensors"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Controls   [][]float64        `json:"controls"`
	Metrics    map[string]float64 `json:"metrics"`
	Front      []bicycle.Point    `json:"front,omitempty"`
	Rear       []bicycle.Point    `json:"rear,omitempty"`
}

func newExportData(meta *RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		Model:      meta.Model,
		Controller: meta.Controller,
		Seed:       meta.Seed,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      result.StepsTaken,
		Goal:       meta.Goal,
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Controls:   make([][]float64, len(result.Controls)),
		Metrics:    result.Metrics,
		Front:      result.Trajectory.Front,
		Rear:       result.Trajectory.Rear,
	}

	if len(result.States) > 0 {
		data.Sensors = bicycle.SensorNames[:len(result.States[0])]
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}
	return data
}

// WriteJSON encodes the run to w, indented.
func WriteJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, result))
}

func ExportJSON(path string, meta *RunMetadata, result *sim.Result) error {
	return writeFile(path, func(f *os.File) error {
		return WriteJSON(f, meta, result)
	})
}

// ExportCSV writes the states table of a run to path.
func ExportCSV(path string, result *sim.Result) error {
	return writeFile(path, func(f *os.File) error {
		return WriteStatesCSV(f, result)
	})
}
