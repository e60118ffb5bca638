// Package graphics records turtle drawing commands and renders them.
package graphics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/caffeineduck/pyplay/hostfunc"
)

// Drawing operations sent by the turtle shim.
const (
	OpLine  = "line"
	OpDot   = "dot"
	OpClear = "clear"
	OpBg    = "bg"
)

// Default canvas size in turtle units, centred on the origin.
const (
	DefaultWidth  = 400
	DefaultHeight = 400
)

// Shape is one recorded mark on the canvas.
type Shape struct {
	Op    string  `json:"op"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Snapshot is a copy of the canvas state.
type Snapshot struct {
	Background string  `json:"background"`
	Shapes     []Shape `json:"shapes"`
}

// Canvas collects shapes from one or more runs. It is safe for concurrent
// use since host calls arrive on the executor's goroutines.
type Canvas struct {
	mu         sync.RWMutex
	background string
	shapes     []Shape
}

// NewCanvas returns an empty white canvas.
func NewCanvas() *Canvas {
	return &Canvas{background: "white"}
}

// Apply records one turtle request and returns the resulting mark. Clear
// and background changes come back as a Shape with only Op (and Color) set.
func (c *Canvas) Apply(req hostfunc.TurtleRequest) (Shape, error) {
	var shape Shape
	c.mu.Lock()
	defer c.mu.Unlock()
	switch req.Op {
	case OpLine:
		shape = Shape{Op: OpLine, X1: req.X1, Y1: req.Y1, X2: req.X2, Y2: req.Y2, Color: colorOr(req.Color), Width: widthOr(req.Width)}
		c.shapes = append(c.shapes, shape)
	case OpDot:
		shape = Shape{Op: OpDot, X1: req.X1, Y1: req.Y1, Color: colorOr(req.Color), Width: widthOr(req.Width)}
		c.shapes = append(c.shapes, shape)
	case OpClear:
		shape = Shape{Op: OpClear}
		c.shapes = nil
	case OpBg:
		shape = Shape{Op: OpBg, Color: colorOr(req.Color)}
		c.background = shape.Color
	default:
		return Shape{}, fmt.Errorf("unknown turtle op %q", req.Op)
	}
	return shape, nil
}

// Draw is a hostfunc.NewTurtle sink bound to this canvas.
func (c *Canvas) Draw(ctx context.Context, req hostfunc.TurtleRequest) error {
	_, err := c.Apply(req)
	return err
}

// Reset empties the canvas and restores the white background.
func (c *Canvas) Reset() {
	c.mu.Lock()
	c.shapes = nil
	c.background = "white"
	c.mu.Unlock()
}

// Len reports the number of recorded shapes.
func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shapes)
}

// Snapshot copies the current state.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	shapes := make([]Shape, len(c.shapes))
	copy(shapes, c.shapes)
	return Snapshot{Background: c.background, Shapes: shapes}
}

// RenderASCII rasterises the canvas into cols x rows characters. The
// DefaultWidth x DefaultHeight area around the origin is mapped onto the
// grid; marks outside it are clipped in world space before rasterising, so
// the cost of a line is bounded by the grid size whatever its length.
func (c *Canvas) RenderASCII(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	toCell := func(x, y float64) (int, int) {
		col := int(math.Round((x + DefaultWidth/2) / DefaultWidth * float64(cols-1)))
		row := int(math.Round((DefaultHeight/2 - y) / DefaultHeight * float64(rows-1)))
		return col, row
	}
	plot := func(col, row int, ch rune) {
		if row >= 0 && row < rows && col >= 0 && col < cols {
			grid[row][col] = ch
		}
	}

	for _, s := range c.Snapshot().Shapes {
		switch s.Op {
		case OpDot:
			if !visible(s.X1, s.Y1) {
				continue
			}
			col, row := toCell(s.X1, s.Y1)
			plot(col, row, 'o')
		case OpLine:
			x1, y1, x2, y2, ok := clipLine(s.X1, s.Y1, s.X2, s.Y2)
			if !ok {
				continue
			}
			c0, r0 := toCell(x1, y1)
			c1, r1 := toCell(x2, y2)
			for _, p := range bresenham(c0, r0, c1, r1) {
				plot(p[0], p[1], '*')
			}
		}
	}

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

const (
	minX, maxX = -DefaultWidth / 2, DefaultWidth / 2
	minY, maxY = -DefaultHeight / 2, DefaultHeight / 2
)

func visible(x, y float64) bool {
	return x >= minX && x <= maxX && y >= minY && y <= maxY
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// clipLine trims a segment to the visible area (Liang-Barsky). ok is false
// when nothing of the segment is visible or an endpoint is not finite.
func clipLine(x1, y1, x2, y2 float64) (cx1, cy1, cx2, cy2 float64, ok bool) {
	if !finite(x1, y1, x2, y2) {
		return 0, 0, 0, 0, false
	}
	dx, dy := x2-x1, y2-y1
	if !finite(dx, dy) {
		return 0, 0, 0, 0, false
	}
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x1 - minX},
		{dx, maxX - x1},
		{-dy, y1 - minY},
		{dy, maxY - y1},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	cx1, cy1 = clamp(x1+t0*dx, minX, maxX), clamp(y1+t0*dy, minY, maxY)
	cx2, cy2 = clamp(x1+t1*dx, minX, maxX), clamp(y1+t1*dy, minY, maxY)
	return cx1, cy1, cx2, cy2, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func bresenham(x0, y0, x1, y1 int) [][2]int {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errv := dx + dy
	var pts [][2]int
	for {
		pts = append(pts, [2]int{x0, y0})
		if x0 == x1 && y0 == y1 {
			return pts
		}
		e2 := 2 * errv
		if e2 >= dy {
			errv += dy
			x0 += sx
		}
		if e2 <= dx {
			errv += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func colorOr(c string) string {
	if c == "" {
		return "black"
	}
	return c
}

func widthOr(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}
