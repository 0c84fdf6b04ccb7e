package viz

import (
	"strings"

	"github.com/san-kum/dispsim/internal/analysis"
)

// Braille cells are 2×4 dots; brailleBits[row][col] is the dot's bit.
var brailleBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a dot matrix drawn with braille characters. Dot coordinates run
// over (2·Width)×(4·Height) with y growing downwards.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(string(rune(brailleBlank)), w))
	}
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.cells[y/4][x/2] |= brailleBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.cells[y/4][x/2]&brailleBits[y%4][x%2] != 0
}

// Line draws with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PhasePlot traces a phase trajectory onto a w×h character canvas, scaled
// to the trajectory's bounding box.
func PhasePlot(pts []analysis.PhasePoint, w, h int) string {
	if len(pts) == 0 || w <= 0 || h <= 0 {
		return ""
	}
	minX, maxX, minY, maxY := pts[0].X, pts[0].X, pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}

	c := NewCanvas(w, h)
	dotsX, dotsY := float64(2*w-1), float64(4*h-1)
	px := func(p analysis.PhasePoint) (int, int) {
		return int((p.X - minX) / (maxX - minX) * dotsX), int((maxY - p.Y) / (maxY - minY) * dotsY)
	}
	x0, y0 := px(pts[0])
	c.Set(x0, y0)
	for _, p := range pts[1:] {
		x1, y1 := px(p)
		c.Line(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
	return c.String()
}
