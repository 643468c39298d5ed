// Package imagefile serves a saved screenshot as the screen, for offline
// location and recognition runs.
package imagefile

import (
	"context"
	"fmt"
	"image"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/vision"

	"github.com/disintegration/imaging"
)

var _ output.ScreenPort = (*Screen)(nil)

type Screen struct {
	path string
	img  image.Image
}

// Open decodes the file once; every capture is cut from that image.
func Open(path string) (*Screen, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open screenshot %s: %w", path, err)
	}
	return New(img, path), nil
}

func New(img image.Image, name string) *Screen {
	return &Screen{path: name, img: img}
}

func (s *Screen) ScreenSize(ctx context.Context) (int, int, error) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy(), nil
}

func (s *Screen) CaptureFullScreen(ctx context.Context) (*entity.Frame, error) {
	b := s.img.Bounds()
	return entity.NewFrame(imaging.Clone(s.img), entity.NewRect(0, 0, b.Dx(), b.Dy()), s.path), nil
}

func (s *Screen) CaptureRegion(ctx context.Context, region entity.Rect) (*entity.Frame, error) {
	b := s.img.Bounds()
	full := entity.NewRect(0, 0, b.Dx(), b.Dy())
	if region.Empty() || region.Intersect(full) != region {
		return nil, entity.NewInvalidCoordinatesError("capture region", region, b.Dx(), b.Dy())
	}
	return entity.NewFrame(vision.Crop(s.img, region), region, s.path), nil
}

// CaptureWindow always fails: a screenshot has no windows.
func (s *Screen) CaptureWindow(ctx context.Context, title string) (*entity.Frame, error) {
	return nil, entity.NewNotFoundError("capture window", "window "+title+" in "+s.path)
}
