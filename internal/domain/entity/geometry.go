package entity

import (
	"fmt"
	"image"
	"math"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) Distance(o Point) float64 {
	return math.Hypot(float64(o.X-p.X), float64(o.Y-p.Y))
}

// Rect is an axis-aligned box in screen pixels. Width and Height are exclusive extents.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func RectFromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// RectFromCorners normalizes a two-corner box, in any corner order.
func RectFromCorners(x1, y1, x2, y2 int) Rect {
	return RectFromImage(image.Rect(x1, y1, x2, y2))
}

// RectFromPolygon returns the bounding box of a point list.
func RectFromPolygon(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.Width && p.Y < r.Y+r.Height
}

func (r Rect) Intersect(o Rect) Rect {
	return RectFromImage(r.Image().Intersect(o.Image()))
}

func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// IoU is the intersection-over-union ratio, 0 for disjoint or degenerate boxes.
func (r Rect) IoU(o Rect) float64 {
	inter := r.Intersect(o).Area()
	if inter == 0 {
		return 0
	}
	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Expand grows the box by pad on every side. The origin is clamped at zero.
func (r Rect) Expand(pad int) Rect {
	x := max(0, r.X-pad)
	y := max(0, r.Y-pad)
	return Rect{
		X:      x,
		Y:      y,
		Width:  r.X + r.Width + pad - x,
		Height: r.Y + r.Height + pad - y,
	}
}

// Scale grows or shrinks the box around its center by factor.
func (r Rect) Scale(factor float64) Rect {
	if factor <= 0 || factor == 1 {
		return r
	}
	w := int(math.Round(float64(r.Width) * factor))
	h := int(math.Round(float64(r.Height) * factor))
	c := r.Center()
	return Rect{X: max(0, c.X-w/2), Y: max(0, c.Y-h/2), Width: w, Height: h}
}

func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// ClampUnit clamps a score into [0,1]. NaN maps to 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
