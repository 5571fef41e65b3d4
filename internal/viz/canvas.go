package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Projection maps train coordinates (y up) to canvas sub-pixels (y down).
type Projection struct {
	CX, CY float64
	Scale  float64
}

// Fit returns a projection that shows a disc of the given radius centred on
// the canvas.
func (c *Canvas) Fit(radius float64) Projection {
	w := float64(c.Width * 2)
	h := float64(c.Height * 4)
	scale := 1.0
	if radius > 0 {
		scale = (math.Min(w, h)/2 - 1) / radius
	}
	return Projection{CX: w / 2, CY: h / 2, Scale: scale}
}

func (p Projection) Map(v r2.Vec) (int, int) {
	return int(math.Round(p.CX + v.X*p.Scale)), int(math.Round(p.CY - v.Y*p.Scale))
}

// DrawPolygon draws a closed outline translated by offset.
func (c *Canvas) DrawPolygon(points []r2.Vec, offset r2.Vec, proj Projection) {
	if len(points) == 0 {
		return
	}
	prevX, prevY := proj.Map(r2.Add(points[len(points)-1], offset))
	for _, pt := range points {
		x, y := proj.Map(r2.Add(pt, offset))
		c.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
}

// DrawCircle draws a circle outline with enough segments to look round at
// the projected size.
func (c *Canvas) DrawCircle(center r2.Vec, radius float64, proj Projection) {
	segments := int(math.Max(12, radius*proj.Scale*2))
	points := make([]r2.Vec, segments)
	for i := range points {
		a := 2 * math.Pi * float64(i) / float64(segments)
		points[i] = r2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	c.DrawPolygon(points, center, proj)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
