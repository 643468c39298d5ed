package entity

import (
	"image"
	"time"
)

// Frame is an immutable screen capture. Bounds is the captured area in screen
// coordinates; pixel (0,0) of Image maps to Bounds.X, Bounds.Y.
type Frame struct {
	Image      image.Image
	Bounds     Rect
	Source     string
	CapturedAt time.Time
}

func NewFrame(img image.Image, bounds Rect, source string) *Frame {
	return &Frame{
		Image:      img,
		Bounds:     bounds,
		Source:     source,
		CapturedAt: time.Now(),
	}
}

func (f *Frame) Width() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dx()
}

func (f *Frame) Height() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dy()
}

func (f *Frame) Age(now time.Time) time.Duration {
	return now.Sub(f.CapturedAt)
}

// ToScreen converts a frame-local point into screen coordinates.
func (f *Frame) ToScreen(p Point) Point {
	return Point{X: p.X + f.Bounds.X, Y: p.Y + f.Bounds.Y}
}

func (f *Frame) RectToScreen(r Rect) Rect {
	return r.Translate(f.Bounds.X, f.Bounds.Y)
}

// WithImage returns a copy of the frame carrying a processed image.
func (f *Frame) WithImage(img image.Image) *Frame {
	cp := *f
	cp.Image = img
	return &cp
}
