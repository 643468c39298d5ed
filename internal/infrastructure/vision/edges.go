package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

var (
	sobelX = [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelY = [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// gradient returns the signed Sobel response of g. imaging clamps
// convolution output to [0,255], so the kernel is split into its positive and
// negative halves at quarter scale and recombined.
func gradient(src image.Image, kernel [9]float64) []float64 {
	var pos, neg [9]float64
	for i, k := range kernel {
		pos[i] = k / 4
		neg[i] = -k / 4
	}
	p := imaging.Convolve3x3(src, pos, nil)
	n := imaging.Convolve3x3(src, neg, nil)

	w, h := p.Rect.Dx(), p.Rect.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*p.Stride + x*4
			out[y*w+x] = 4 * (float64(p.Pix[i]) - float64(n.Pix[i]))
		}
	}
	return out
}

// Canny is an edge detector with non-maximum suppression and hysteresis,
// using the L1 gradient norm.
func Canny(g *Gray, low, high float64) *Mask {
	src := g.Image()
	gx := gradient(src, sobelX)
	gy := gradient(src, sobelY)

	w, h := g.W, g.H
	mag := make([]float64, w*h)
	for i := range mag {
		mag[i] = math.Abs(gx[i]) + math.Abs(gy[i])
	}

	const tan22 = 0.4142135623730951
	strong := NewMask(w, h)
	weak := NewMask(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}
			ax, ay := math.Abs(gx[i]), math.Abs(gy[i])
			var a, b float64
			switch {
			case ay <= ax*tan22:
				a, b = mag[i-1], mag[i+1]
			case ax <= ay*tan22:
				a, b = mag[i-w], mag[i+w]
			case (gx[i] > 0) == (gy[i] > 0):
				a, b = mag[i-w-1], mag[i+w+1]
			default:
				a, b = mag[i-w+1], mag[i+w-1]
			}
			if m < a || m < b {
				continue
			}
			if m > high {
				strong.Set(x, y)
			} else {
				weak.Set(x, y)
			}
		}
	}

	stack := make([]int, 0, 64)
	for i, s := range strong.Bits {
		if s {
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if !weak.Get(nx, ny) {
					continue
				}
				j := ny*w + nx
				weak.Bits[j] = false
				strong.Bits[j] = true
				stack = append(stack, j)
			}
		}
	}
	return strong
}
