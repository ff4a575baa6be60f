package export

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
	"github.com/san-kum/bikesim/internal/sim"
)

func circleRun(n int) *sim.Result {
	res := &sim.Result{}
	for i := 0; i < n; i++ {
		a := float64(i) * 0.1
		s := bicycle.State{Omega: 0.01 * float64(i), XF: 5 * (1 - math.Cos(a)), YF: 5 * math.Sin(a)}
		s.XB, s.YB = s.XF+0.5, s.YF-1
		res.States = append(res.States, s.Sensors(false))
		res.Times = append(res.Times, float64(i)*0.01)
		res.Controls = append(res.Controls, dynamo.Control{0, 0})
		res.Trajectory.Front = append(res.Trajectory.Front, s.Front())
		res.Trajectory.Rear = append(res.Trajectory.Rear, s.Rear())
	}
	return res
}

func TestTrackPlotPNG(t *testing.T) {
	p, err := TrackPlot(circleRun(50).Trajectory, &bicycle.Point{X: 3, Y: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p, 2, 2))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestTrackPlotEmpty(t *testing.T) {
	_, err := TrackPlot(sim.Track{}, nil)
	assert.Error(t, err)
}

func TestSeriesPlot(t *testing.T) {
	res := circleRun(10)
	p, err := SeriesPlot(res, bicycle.IdxOmega)
	require.NoError(t, err)
	assert.Equal(t, "omega(t)", p.Title.Text)

	_, err = SeriesPlot(res, 42)
	assert.Error(t, err)
	_, err = SeriesPlot(&sim.Result{}, 0)
	assert.Error(t, err)
}

func TestSaveRunPlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	paths, err := SaveRunPlots(dir, circleRun(20), nil)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, path := range paths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	noTrack := circleRun(20)
	noTrack.Trajectory = sim.Track{}
	paths, err = SaveRunPlots(t.TempDir(), noTrack, nil)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestTrackToSVG(t *testing.T) {
	svg := TrackToSVG(circleRun(30).Trajectory, 400)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))

	assert.Empty(t, TrackToSVG(sim.Track{}, 400))
}
