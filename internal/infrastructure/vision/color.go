package vision

import (
	"image"

	"github.com/disintegration/imaging"
)

// HSV uses the 8-bit convention: hue in [0,180), saturation and value in [0,255].
type HSV struct {
	H, S, V float64
}

func rgbToHSV(r, g, b uint8) HSV {
	rf, gf, bf := float64(r), float64(g), float64(b)
	mx := max(rf, gf, bf)
	mn := min(rf, gf, bf)
	d := mx - mn
	var h, s float64
	if mx > 0 {
		s = d / mx * 255
	}
	if d > 0 {
		switch mx {
		case rf:
			h = 60 * (gf - bf) / d
		case gf:
			h = 60*(bf-rf)/d + 120
		default:
			h = 60*(rf-gf)/d + 240
		}
		if h < 0 {
			h += 360
		}
	}
	return HSV{H: h / 2, S: s, V: mx}
}

// InRange marks the pixels whose HSV value lies within [lo, hi] on every axis.
func InRange(img image.Image, lo, hi HSV) *Mask {
	n := imaging.Clone(img)
	w, h := n.Rect.Dx(), n.Rect.Dy()
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride:]
		for x := 0; x < w; x++ {
			c := rgbToHSV(row[x*4], row[x*4+1], row[x*4+2])
			if c.H >= lo.H && c.H <= hi.H && c.S >= lo.S && c.S <= hi.S && c.V >= lo.V && c.V <= hi.V {
				m.Set(x, y)
			}
		}
	}
	return m
}
