package vision

import (
	"math"

	"desktop-agent/internal/domain/entity"
)

// Contour is the outer boundary of one 8-connected blob of set pixels.
type Contour struct {
	Box entity.Rect
	// Area counts the pixels enclosed by the outer boundary, holes included.
	Area     int
	Boundary []entity.Point
}

func (c Contour) Extent() float64 {
	if c.Box.Area() == 0 {
		return 0
	}
	return float64(c.Area) / float64(c.Box.Area())
}

var neighbours = [8]entity.Point{
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
}

// FindContours labels the blobs of m and returns their external contours in
// raster order of their top-left pixel.
func FindContours(m *Mask) []Contour {
	labels := make([]int, len(m.Bits))
	var out []Contour
	next := 0
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			i := y*m.W + x
			if !m.Bits[i] || labels[i] != 0 {
				continue
			}
			next++
			box := flood(m, labels, x, y, next)
			label := next
			in := func(p entity.Point) bool {
				return m.Get(p.X, p.Y) && labels[p.Y*m.W+p.X] == label
			}
			out = append(out, Contour{
				Box:      box,
				Area:     enclosedArea(box, in),
				Boundary: trace(in, entity.Point{X: x, Y: y}),
			})
		}
	}
	return out
}

func flood(m *Mask, labels []int, x, y, label int) entity.Rect {
	minX, minY, maxX, maxY := x, y, x, y
	stack := []entity.Point{{X: x, Y: y}}
	labels[y*m.W+x] = label
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
		for _, d := range neighbours {
			n := p.Add(d.X, d.Y)
			if !m.Get(n.X, n.Y) {
				continue
			}
			j := n.Y*m.W + n.X
			if labels[j] != 0 {
				continue
			}
			labels[j] = label
			stack = append(stack, n)
		}
	}
	return entity.NewRect(minX, minY, maxX-minX+1, maxY-minY+1)
}

// enclosedArea is the box area minus the pixels reachable from the box border
// without crossing the blob.
func enclosedArea(box entity.Rect, in func(entity.Point) bool) int {
	w, h := box.Width, box.Height
	outside := make([]bool, w*h)
	var stack []entity.Point
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h || outside[y*w+x] {
			return
		}
		if in(entity.Point{X: box.X + x, Y: box.Y + y}) {
			return
		}
		outside[y*w+x] = true
		stack = append(stack, entity.Point{X: x, Y: y})
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	reached := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return w*h - reached
}

// trace walks the outer boundary clockwise with Moore-neighbour tracing.
// start must be the first blob pixel in raster order.
func trace(in func(entity.Point) bool, start entity.Point) []entity.Point {
	boundary := []entity.Point{start}
	cur := start
	back := 4 // west of the first raster pixel is background
	for step := 0; step < 1<<20; step++ {
		found := false
		for i := 1; i <= 8; i++ {
			d := (back + i) % 8
			n := cur.Add(neighbours[d].X, neighbours[d].Y)
			if !in(n) {
				continue
			}
			prev := cur.Add(neighbours[(back+i-1)%8].X, neighbours[(back+i-1)%8].Y)
			back = direction(n, prev)
			cur = n
			found = true
			break
		}
		if !found || cur == start {
			break
		}
		boundary = append(boundary, cur)
	}
	return boundary
}

func direction(from, to entity.Point) int {
	for i, d := range neighbours {
		if from.X+d.X == to.X && from.Y+d.Y == to.Y {
			return i
		}
	}
	return 4
}

// Perimeter is the closed arc length of a point loop.
func Perimeter(points []entity.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var l float64
	for i := range points {
		l += points[i].Distance(points[(i+1)%len(points)])
	}
	return l
}

// ApproxPolygon simplifies a closed loop with Douglas-Peucker.
func ApproxPolygon(points []entity.Point, epsilon float64) []entity.Point {
	if len(points) < 3 {
		return points
	}
	far, best := 0, -1.0
	for i, p := range points {
		if d := p.Distance(points[0]); d > best {
			far, best = i, d
		}
	}
	first := douglasPeucker(points[:far+1], epsilon)
	loop := append(append([]entity.Point{}, points[far:]...), points[0])
	second := douglasPeucker(loop, epsilon)
	return append(first[:len(first)-1], second[:len(second)-1]...)
}

func douglasPeucker(points []entity.Point, epsilon float64) []entity.Point {
	if len(points) < 3 {
		return append([]entity.Point(nil), points...)
	}
	a, b := points[0], points[len(points)-1]
	idx, dmax := 0, 0.0
	for i := 1; i < len(points)-1; i++ {
		if d := segmentDistance(points[i], a, b); d > dmax {
			idx, dmax = i, d
		}
	}
	if dmax <= epsilon {
		return []entity.Point{a, b}
	}
	left := douglasPeucker(points[:idx+1], epsilon)
	right := douglasPeucker(points[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func segmentDistance(p, a, b entity.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}
	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	px, py := float64(a.X)+t*dx, float64(a.Y)+t*dy
	return math.Hypot(float64(p.X)-px, float64(p.Y)-py)
}

// IsQuadrilateral reports whether the loop simplifies to four corners at
// 2% of its perimeter.
func IsQuadrilateral(points []entity.Point) bool {
	return len(ApproxPolygon(points, 0.02*Perimeter(points))) == 4
}
