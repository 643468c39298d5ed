package input

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

// ScreenSource is the validated, cached view of the capture boundary.
type ScreenSource interface {
	Size(ctx context.Context) (width, height int, err error)
	See(ctx context.Context, force bool) (*entity.Frame, error)
	Region(ctx context.Context, r entity.Rect) (*entity.Frame, error)
	Window(ctx context.Context, title string) (*entity.Frame, error)
	ValidatePoint(ctx context.Context, op string, p entity.Point) error
	Invalidate()
}
