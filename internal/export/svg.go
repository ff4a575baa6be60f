package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/sim"
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

func trackBounds(sets ...[]bicycle.Point) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, pts := range sets {
		for _, p := range pts {
			b.minX = math.Min(b.minX, p.X)
			b.maxX = math.Max(b.maxX, p.X)
			b.minY = math.Min(b.minY, p.Y)
			b.maxY = math.Max(b.maxY, p.Y)
		}
	}

	// Pad by 10% and keep the aspect ratio so circles stay circles.
	span := math.Max(b.maxX-b.minX, b.maxY-b.minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := span * 0.6
	return bounds{cx - half, cx + half, cy - half, cy + half}
}

// TrackToSVG renders the wheel tracks as two SVG paths, front then rear.
func TrackToSVG(track sim.Track, size int) string {
	if len(track.Rear) < 2 {
		return ""
	}

	b := trackBounds(track.Front, track.Rear)
	scale := float64(size) / (b.maxX - b.minX)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	for _, series := range []struct {
		pts    []bicycle.Point
		stroke string
	}{
		{track.Front, "#00ccff"},
		{track.Rear, "#ff4444"},
	} {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, series.stroke)
		for i, p := range series.pts {
			x := (p.X - b.minX) * scale
			y := float64(size) - (p.Y-b.minY)*scale
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
