package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/sim"
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
	}
	c.Clear()
	return c
}

// Set sets a dot at (x, y) in sub-pixel coordinates. The canvas is
// Width*2 by Height*4 dots.
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

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
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

// DrawCircle outlines a circle of radius r dots.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	n := 8 * r
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.Set(cx+int(math.Round(float64(r)*math.Cos(a))), cy+int(math.Round(float64(r)*math.Sin(a))))
	}
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

// SideView projects the x/y plane of the world onto a canvas. Up is y.
type SideView struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

var DefaultSideView = SideView{MinX: -0.5, MaxX: 0.5, MinY: -0.05, MaxY: 0.8}

// FitSideView frames every hand and target in s with some margin.
func FitSideView(s sim.Sample) SideView {
	v := DefaultSideView
	grow := func(p mgl64.Vec3) {
		v.MinX = math.Min(v.MinX, p.X()-0.2)
		v.MaxX = math.Max(v.MaxX, p.X()+0.2)
		v.MaxY = math.Max(v.MaxY, p.Y()+0.2)
	}
	for _, h := range s.Hands {
		grow(h.Position)
	}
	for _, t := range s.Targets {
		grow(t.Position)
	}
	return v
}

func (v SideView) project(c *Canvas, p mgl64.Vec3) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	x := (p.X() - v.MinX) / (v.MaxX - v.MinX) * w
	y := (v.MaxY - p.Y()) / (v.MaxY - v.MinY) * h
	return int(math.Round(x)), int(math.Round(y))
}

func (v SideView) scale(c *Canvas, d float64) int {
	return int(math.Round(d / (v.MaxX - v.MinX) * float64(c.Width*2-1)))
}

// Draw renders the ground, targets as circles and hands as crosses.
func (v SideView) Draw(c *Canvas, s sim.Sample, targetRadius float64) {
	c.Clear()
	_, gy := v.project(c, mgl64.Vec3{})
	c.DrawLine(0, gy, c.Width*2-1, gy)

	r := v.scale(c, targetRadius)
	for _, t := range s.Targets {
		x, y := v.project(c, t.Position)
		c.DrawCircle(x, y, r)
	}
	for _, h := range s.Hands {
		x, y := v.project(c, h.Position)
		c.DrawLine(x-2, y, x+2, y)
		c.DrawLine(x, y-2, x, y+2)
		if h.Held != "" {
			c.DrawCircle(x, y, 3)
		}
	}
}
