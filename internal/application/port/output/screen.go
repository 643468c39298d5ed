package output

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

// ScreenPort captures pixels from the display. Implementations return typed
// errors and never panic.
type ScreenPort interface {
	ScreenSize(ctx context.Context) (width, height int, err error)
	CaptureFullScreen(ctx context.Context) (*entity.Frame, error)
	CaptureRegion(ctx context.Context, region entity.Rect) (*entity.Frame, error)
	CaptureWindow(ctx context.Context, title string) (*entity.Frame, error)
}
