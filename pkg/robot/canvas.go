// Package robot draws the decorative floating robot shown behind the chat.
//
// The scene is described in a fixed 400x400 logical coordinate space and
// rasterized onto a grid of terminal cells. It is purely presentational and
// shares no state with the conversation.
package robot

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Size is the width and height of the logical drawing surface.
const Size = 400.0

// Paint classifies what a cell belongs to. Each paint has its own color.
type Paint uint8

const (
	Blank Paint = iota
	Shadow
	Glow
	Fill
	Outline
	Screen
	Particle
)

// Brush is the glyph and paint a primitive leaves behind. The zero Brush
// paints nothing.
type Brush struct {
	Glyph rune
	Paint Paint
}

func (b Brush) empty() bool {
	return b.Glyph == 0
}

// Cell is one rasterized character.
type Cell struct {
	Glyph rune
	Paint Paint
}

// Canvas is a logical Size x Size surface backed by a width x height cell grid.
type Canvas struct {
	width  int
	height int
	cells  []Cell
	styles map[Paint]lipgloss.Style
}

// NewCanvas creates a blank canvas of width x height cells.
func NewCanvas(width, height int) *Canvas {
	width = max(width, 1)
	height = max(height, 1)

	c := &Canvas{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		styles: DefaultStyles(),
	}
	c.Clear()
	return c
}

// DefaultStyles are the cyan-on-slate colors of the robot.
func DefaultStyles() map[Paint]lipgloss.Style {
	return map[Paint]lipgloss.Style{
		Shadow:   lipgloss.NewStyle().Foreground(lipgloss.Color("#164e63")),
		Glow:     lipgloss.NewStyle().Foreground(lipgloss.Color("#0e3a47")),
		Fill:     lipgloss.NewStyle().Foreground(lipgloss.Color("#1e293b")),
		Outline:  lipgloss.NewStyle().Foreground(lipgloss.Color("#06b6d4")).Bold(true),
		Screen:   lipgloss.NewStyle().Foreground(lipgloss.Color("#22d3ee")),
		Particle: lipgloss.NewStyle().Foreground(lipgloss.Color("#67e8f9")).Bold(true),
	}
}

// SetStyles replaces the per-paint styles used by String.
func (c *Canvas) SetStyles(styles map[Paint]lipgloss.Style) {
	c.styles = styles
}

// Width returns the number of columns.
func (c *Canvas) Width() int { return c.width }

// Height returns the number of rows.
func (c *Canvas) Height() int { return c.height }

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{Glyph: ' ', Paint: Blank}
	}
}

// At returns the cell at col, row. Out of range positions are blank.
func (c *Canvas) At(col, row int) Cell {
	if !c.inBounds(col, row) {
		return Cell{Glyph: ' ', Paint: Blank}
	}
	return c.cells[row*c.width+col]
}

// Cell returns the cell covering the logical point x, y.
func (c *Canvas) Cell(x, y float64) Cell {
	return c.At(c.col(x), c.row(y))
}

func (c *Canvas) inBounds(col, row int) bool {
	return col >= 0 && col < c.width && row >= 0 && row < c.height
}

func (c *Canvas) col(x float64) int {
	return int(math.Floor(x / Size * float64(c.width)))
}

func (c *Canvas) row(y float64) int {
	return int(math.Floor(y / Size * float64(c.height)))
}

// center returns the logical coordinates of the middle of a cell.
func (c *Canvas) center(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * Size / float64(c.width),
		(float64(row) + 0.5) * Size / float64(c.height)
}

func (c *Canvas) set(col, row int, b Brush) {
	if b.empty() || !c.inBounds(col, row) {
		return
	}
	c.cells[row*c.width+col] = Cell(b)
}

// Point paints the cell covering x, y.
func (c *Canvas) Point(x, y float64, b Brush) {
	c.set(c.col(x), c.row(y), b)
}

// Line paints the cells along the segment from x0, y0 to x1, y1.
func (c *Canvas) Line(x0, y0, x1, y1 float64, b Brush) {
	c0, r0 := c.col(x0), c.row(y0)
	c1, r1 := c.col(x1), c.row(y1)

	steps := max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		c.set(c0, r0, b)
		return
	}

	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		col := c0 + int(math.Round(f*float64(c1-c0)))
		row := r0 + int(math.Round(f*float64(r1-r0)))
		c.set(col, row, b)
	}
}

// Ellipse paints an axis-aligned ellipse centered on cx, cy. Cells inside get
// fill; inside cells bordering the outside get stroke.
func (c *Canvas) Ellipse(cx, cy, rx, ry float64, fill, stroke Brush) {
	if rx <= 0 || ry <= 0 {
		return
	}

	inside := func(x, y float64) bool {
		dx, dy := (x-cx)/rx, (y-cy)/ry
		return dx*dx+dy*dy <= 1
	}

	bounds := [4]float64{cx - rx, cy - ry, cx + rx, cy + ry}
	if c.shape(bounds, inside, fill, stroke) == 0 {
		// Smaller than a cell: keep it visible.
		c.Point(cx, cy, pick(stroke, fill))
	}
}

// Circle paints a circle of radius r centered on cx, cy.
func (c *Canvas) Circle(cx, cy, r float64, fill, stroke Brush) {
	c.Ellipse(cx, cy, r, r, fill, stroke)
}

// Rect paints the rectangle with top-left corner x, y.
func (c *Canvas) Rect(x, y, w, h float64, fill, stroke Brush) {
	if w <= 0 || h <= 0 {
		return
	}

	inside := func(px, py float64) bool {
		return px >= x && px <= x+w && py >= y && py <= y+h
	}

	if c.shape([4]float64{x, y, x + w, y + h}, inside, fill, stroke) == 0 {
		c.Point(x+w/2, y+h/2, pick(stroke, fill))
	}
}

// shape paints every cell within bounds whose center satisfies inside and
// reports how many cells were covered.
func (c *Canvas) shape(bounds [4]float64, inside func(x, y float64) bool, fill, stroke Brush) int {
	minCol, minRow := max(c.col(bounds[0]), 0), max(c.row(bounds[1]), 0)
	maxCol, maxRow := min(c.col(bounds[2]), c.width-1), min(c.row(bounds[3]), c.height-1)

	covered := 0
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !inside(c.center(col, row)) {
				continue
			}
			covered++

			edge := !inside(c.center(col-1, row)) || !inside(c.center(col+1, row)) ||
				!inside(c.center(col, row-1)) || !inside(c.center(col, row+1))
			if edge && !stroke.empty() {
				c.set(col, row, stroke)
			} else {
				c.set(col, row, fill)
			}
		}
	}

	return covered
}

// Plain returns the glyphs without styling, one line per row.
func (c *Canvas) Plain() string {
	var sb strings.Builder
	for row := 0; row < c.height; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < c.width; col++ {
			sb.WriteRune(c.cells[row*c.width+col].Glyph)
		}
	}
	return sb.String()
}

// String renders the canvas with one style per run of equally painted cells.
func (c *Canvas) String() string {
	var sb strings.Builder
	var run strings.Builder

	for row := 0; row < c.height; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}

		current := Blank
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if style, ok := c.styles[current]; ok && current != Blank {
				sb.WriteString(style.Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
			run.Reset()
		}

		for col := 0; col < c.width; col++ {
			cell := c.cells[row*c.width+col]
			if cell.Paint != current {
				flush()
				current = cell.Paint
			}
			run.WriteRune(cell.Glyph)
		}
		flush()
	}

	return sb.String()
}

func pick(brushes ...Brush) Brush {
	for _, b := range brushes {
		if !b.empty() {
			return b
		}
	}
	return Brush{}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
