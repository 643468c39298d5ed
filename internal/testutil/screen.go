package testutil

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var _ output.ScreenPort = (*FakeScreen)(nil)

// FakeScreen serves crops of a fixed image.
type FakeScreen struct {
	Image   image.Image
	Windows map[string]entity.Rect
	Err     error

	mu    sync.Mutex
	calls int
}

func NewFakeScreen(img image.Image) *FakeScreen {
	return &FakeScreen{Image: img, Windows: map[string]entity.Rect{}}
}

// Blank returns a white w x h canvas.
func Blank(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

// FillRect paints r onto img.
func FillRect(img draw.Image, r entity.Rect, c color.Color) {
	draw.Draw(img, r.Image(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (s *FakeScreen) Captures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *FakeScreen) ScreenSize(ctx context.Context) (int, int, error) {
	b := s.Image.Bounds()
	return b.Dx(), b.Dy(), nil
}

func (s *FakeScreen) CaptureFullScreen(ctx context.Context) (*entity.Frame, error) {
	return s.CaptureRegion(ctx, entity.RectFromImage(s.Image.Bounds()))
}

func (s *FakeScreen) CaptureRegion(ctx context.Context, region entity.Rect) (*entity.Frame, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, region.Width, region.Height))
	draw.Draw(dst, dst.Bounds(), s.Image, region.Image().Min, draw.Src)
	return entity.NewFrame(dst, region, "fake"), nil
}

func (s *FakeScreen) CaptureWindow(ctx context.Context, title string) (*entity.Frame, error) {
	r, ok := s.Windows[title]
	if !ok {
		return nil, entity.NewNotFoundError("capture window", "window "+title)
	}
	return s.CaptureRegion(ctx, r)
}
