package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/sim"
)

var controlNames = []string{"T", "d"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteStatesCSV writes one row per state: time, the named sensors, then the
// action applied from that state. The last row has empty action cells.
func WriteStatesCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	if len(result.States) == 0 {
		w.Flush()
		return w.Error()
	}

	dim := len(result.States[0])
	if dim > len(bicycle.SensorNames) {
		return fmt.Errorf("%w: %d sensors", dynamo.ErrDimensionMismatch, dim)
	}

	header := []string{"time"}
	header = append(header, bicycle.SensorNames[:dim]...)
	header = append(header, controlNames...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, x := range result.States {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(result.Times[i]))
		for _, val := range x {
			row = append(row, formatFloat(val))
		}
		if i < len(result.Controls) {
			for _, val := range result.Controls[i] {
				row = append(row, formatFloat(val))
			}
		} else {
			row = append(row, "", "")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ReadStatesCSV parses what WriteStatesCSV wrote.
func ReadStatesCSV(in io.Reader) (*sim.Result, error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	res := &sim.Result{
		States:   []dynamo.State{},
		Controls: []dynamo.Control{},
		Times:    []float64{},
	}
	if len(records) < 2 {
		return res, nil
	}

	dim := len(records[0]) - 1 - len(controlNames)
	if dim < 1 {
		return nil, fmt.Errorf("%w: header has %d columns", dynamo.ErrDimensionMismatch, len(records[0]))
	}

	for n, record := range records[1:] {
		vals := make([]float64, len(record))
		blank := false
		for j, cell := range record {
			if cell == "" && j > dim {
				blank = true
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", n+1, j, err)
			}
			vals[j] = v
		}

		res.Times = append(res.Times, vals[0])
		res.States = append(res.States, dynamo.State(vals[1:1+dim]))
		if !blank {
			res.Controls = append(res.Controls, dynamo.Control(vals[1+dim:]))
		}
	}
	return res, nil
}

// WriteTrajectoryCSV writes the wheel contacts, one step per row.
func WriteTrajectoryCSV(out io.Writer, track sim.Track) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"xf", "yf", "xb", "yb"}); err != nil {
		return err
	}
	for i := range track.Rear {
		f, b := track.Front[i], track.Rear[i]
		if err := w.Write([]string{formatFloat(f.X), formatFloat(f.Y), formatFloat(b.X), formatFloat(b.Y)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ReadTrajectoryCSV(in io.Reader) (sim.Track, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = 4
	records, err := r.ReadAll()
	if err != nil {
		return sim.Track{}, err
	}

	var track sim.Track
	for n, record := range records {
		if n == 0 {
			continue
		}
		var v [4]float64
		for j, cell := range record {
			if v[j], err = strconv.ParseFloat(cell, 64); err != nil {
				return sim.Track{}, fmt.Errorf("trajectory row %d: %w", n, err)
			}
		}
		track.Front = append(track.Front, bicycle.Point{X: v[0], Y: v[1]})
		track.Rear = append(track.Rear, bicycle.Point{X: v[2], Y: v[3]})
	}
	return track, nil
}
