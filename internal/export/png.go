package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/sim"
)

var (
	frontColor = color.RGBA{R: 0x00, G: 0x99, B: 0xcc, A: 0xff}
	rearColor  = color.RGBA{R: 0xcc, G: 0x33, B: 0x33, A: 0xff}
	goalColor  = color.RGBA{R: 0x22, G: 0x99, B: 0x22, A: 0xff}
)

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)

	p.X.Tick.Label.Font.Size = vg.Points(10)
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	p.Add(plotter.NewGrid())
}

func pointsXY(pts []bicycle.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X = p.X
		xys[i].Y = p.Y
	}
	return xys
}

// TrackPlot draws both wheel-contact tracks, and the goal when given.
func TrackPlot(track sim.Track, goal *bicycle.Point) (*plot.Plot, error) {
	if len(track.Rear) == 0 {
		return nil, fmt.Errorf("empty trajectory")
	}

	p := plot.New()
	p.Title.Text = "Wheel contacts"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	stylePlot(p)

	for _, series := range []struct {
		name string
		pts  []bicycle.Point
		clr  color.Color
	}{
		{"front", track.Front, frontColor},
		{"rear", track.Rear, rearColor},
	} {
		line, err := plotter.NewLine(pointsXY(series.pts))
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = series.clr
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	if goal != nil {
		g, err := plotter.NewScatter(plotter.XYs{{X: goal.X, Y: goal.Y}})
		if err != nil {
			return nil, err
		}
		g.GlyphStyle.Shape = draw.CrossGlyph{}
		g.GlyphStyle.Radius = vg.Points(6)
		g.GlyphStyle.Color = goalColor
		p.Add(g)
		p.Legend.Add("goal", g)
	}

	p.Legend.Top = true
	return p, nil
}

// SeriesPlot draws the sensor at index over time.
func SeriesPlot(result *sim.Result, index int) (*plot.Plot, error) {
	if len(result.States) == 0 {
		return nil, fmt.Errorf("no states recorded")
	}
	if index < 0 || index >= len(result.States[0]) {
		return nil, fmt.Errorf("sensor index %d out of range", index)
	}

	pts := make(plotter.XYs, len(result.States))
	for i, x := range result.States {
		pts[i].X = result.Times[i]
		pts[i].Y = x[index]
	}

	p := plot.New()
	p.Title.Text = bicycle.SensorNames[index] + "(t)"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = bicycle.SensorNames[index]
	stylePlot(p)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}

// WritePNG renders p at the given size in inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

func SavePNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	if err := WritePNG(f, p, widthIn, heightIn); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveRunPlots writes tracks.png (when a trajectory was recorded),
// roll.png and steer.png into dir and returns the paths written.
func SaveRunPlots(dir string, result *sim.Result, goal *bicycle.Point) ([]string, error) {
	var written []string

	if len(result.Trajectory.Rear) > 0 {
		p, err := TrackPlot(result.Trajectory, goal)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, "tracks.png")
		if err := SavePNG(p, 6, 6, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	for _, s := range []struct {
		file  string
		index int
	}{
		{"roll.png", bicycle.IdxOmega},
		{"steer.png", bicycle.IdxTheta},
	} {
		p, err := SeriesPlot(result, s.index)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, s.file)
		if err := SavePNG(p, 8, 4, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
