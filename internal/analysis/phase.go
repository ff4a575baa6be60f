package analysis

import (
	"strings"

	"github.com/san-kum/bikesim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPhasePortrait projects recorded states onto sensors xIdx and yIdx.
// It returns nil when either index is outside the state vector.
func NewPhasePortrait(states []dynamo.State, xIdx, yIdx int) *PhasePortrait2D {
	if len(states) == 0 || xIdx < 0 || yIdx < 0 || xIdx >= len(states[0]) || yIdx >= len(states[0]) {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(states)),
	}
	for _, x := range states {
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// NewPoincareSection records (recordX, recordY) each time sensor crossIdx
// crosses threshold going up.
func NewPoincareSection(states []dynamo.State, crossIdx int, threshold float64, recordX, recordY int) *PhasePortrait2D {
	if len(states) == 0 {
		return nil
	}
	dim := len(states[0])
	if crossIdx < 0 || recordX < 0 || recordY < 0 || crossIdx >= dim || recordX >= dim || recordY >= dim {
		return nil
	}

	section := &PhasePortrait2D{XIndex: recordX, YIndex: recordY, Points: make([]Point, 0)}
	prev := states[0][crossIdx]
	for _, x := range states[1:] {
		cur := x[crossIdx]
		if prev < threshold && cur >= threshold {
			section.Points = append(section.Points, Point{X: x[recordX], Y: x[recordY]})
		}
		prev = cur
	}
	return section
}
