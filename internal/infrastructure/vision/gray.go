// Package vision holds the pixel-level primitives the element locator is
// built from. Every raster here has its origin at (0,0).
package vision

import (
	"image"
	"math"

	"desktop-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
)

type Gray struct {
	W, H int
	Pix  []uint8
}

// ToGray converts any image to luminance.
func ToGray(img image.Image) *Gray {
	return fromNRGBA(imaging.Grayscale(img))
}

func fromNRGBA(n *image.NRGBA) *Gray {
	w, h := n.Rect.Dx(), n.Rect.Dy()
	g := &Gray{W: w, H: h, Pix: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride:]
		for x := 0; x < w; x++ {
			g.Pix[y*w+x] = row[x*4]
		}
	}
	return g
}

func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.W+x]
}

func (g *Gray) Bounds() entity.Rect {
	return entity.NewRect(0, 0, g.W, g.H)
}

// Sub returns a copy of the part of g inside r, clipped to g's bounds.
func (g *Gray) Sub(r entity.Rect) *Gray {
	r = r.Intersect(g.Bounds())
	out := &Gray{W: r.Width, H: r.Height, Pix: make([]uint8, r.Area())}
	for y := 0; y < r.Height; y++ {
		copy(out.Pix[y*r.Width:(y+1)*r.Width], g.Pix[(r.Y+y)*g.W+r.X:])
	}
	return out
}

// Stats returns the mean and population standard deviation of the pixels.
func (g *Gray) Stats() (mean, std float64) {
	if len(g.Pix) == 0 {
		return 0, 0
	}
	var sum, sq float64
	for _, p := range g.Pix {
		v := float64(p)
		sum += v
		sq += v * v
	}
	n := float64(len(g.Pix))
	mean = sum / n
	return mean, math.Sqrt(max(0, sq/n-mean*mean))
}

func (g *Gray) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.W, g.H))
	copy(img.Pix, g.Pix)
	return img
}

// Mask is a binary raster.
type Mask struct {
	W, H int
	Bits []bool
}

func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Bits: make([]bool, w*h)}
}

func (m *Mask) Set(x, y int) {
	m.Bits[y*m.W+x] = true
}

func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Bits[y*m.W+x]
}

func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Density is the fraction of set pixels, 0 for an empty mask.
func (m *Mask) Density() float64 {
	if len(m.Bits) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.Bits))
}
