package output

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

// InputPort injects mouse and keyboard events. Coordinates are screen pixels.
type InputPort interface {
	MoveTo(ctx context.Context, p entity.Point) error
	MouseDown(ctx context.Context, button entity.MouseButton) error
	MouseUp(ctx context.Context, button entity.MouseButton) error
	Click(ctx context.Context, button entity.MouseButton, count int) error
	Scroll(ctx context.Context, dx, dy int) error
	CursorPosition(ctx context.Context) (entity.Point, error)

	KeyDown(ctx context.Context, key string) error
	KeyUp(ctx context.Context, key string) error
	TypeText(ctx context.Context, text string) error
}

type WindowInfo struct {
	Title  string
	Bounds entity.Rect
	Active bool
}

type WindowPort interface {
	Open(ctx context.Context, app string) error
	Close(ctx context.Context, title string, force bool) error
	Switch(ctx context.Context, title string) error
	Resize(ctx context.Context, title string, width, height int) error
	List(ctx context.Context) ([]WindowInfo, error)
}
