package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/dispsim/internal/analysis"
	"github.com/san-kum/dispsim/internal/sim"
	"github.com/san-kum/dispsim/internal/viz"
)

const svgBackground = "#0a0a0a"

func svgHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, svgBackground)
}

// CanvasToSVG draws every set dot of a braille canvas as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	r := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct{ minX, maxX, minY, maxY float64 }

// pad widens b by 10% on each side, and gives flat ranges unit width.
func (b bounds) pad() bounds {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	return bounds{b.minX - rx*0.1, b.maxX + rx*0.1, b.minY - ry*0.1, b.maxY + ry*0.1}
}

func pathData(pts []analysis.PhasePoint, b bounds, width, height int) string {
	var sb strings.Builder
	for i, p := range pts {
		x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
		y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	return sb.String()
}

func boundsOf(sets ...[]analysis.PhasePoint) bounds {
	first := true
	var b bounds
	for _, pts := range sets {
		for _, p := range pts {
			if first {
				b = bounds{p.X, p.X, p.Y, p.Y}
				first = false
				continue
			}
			b.minX, b.maxX = min(b.minX, p.X), max(b.maxX, p.X)
			b.minY, b.maxY = min(b.minY, p.Y), max(b.maxY, p.Y)
		}
	}
	return b.pad()
}

// TrajectoryToSVG draws a phase trajectory as one path.
func TrajectoryToSVG(points []analysis.PhasePoint, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	var sb strings.Builder
	svgHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"%s\"/>\n</svg>",
		strokeColor, pathData(points, boundsOf(points), width, height))
	return sb.String()
}

// SeriesToSVG plots the drive and the polarization at the probe against
// time on shared axes.
func SeriesToSVG(samples []sim.Sample, width, height int) string {
	if len(samples) < 2 {
		return ""
	}

	w := make([]analysis.PhasePoint, len(samples))
	p := make([]analysis.PhasePoint, len(samples))
	for i, s := range samples {
		w[i] = analysis.PhasePoint{X: s.T, Y: s.W}
		p[i] = analysis.PhasePoint{X: s.T, Y: s.P}
	}
	b := boundsOf(w, p)

	var sb strings.Builder
	svgHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"#666688\" stroke-width=\"1\" d=\"%s\"/>\n", pathData(w, b, width, height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"#00ccff\" stroke-width=\"1.5\" d=\"%s\"/>\n", pathData(p, b, width, height))
	sb.WriteString("</svg>")
	return sb.String()
}
