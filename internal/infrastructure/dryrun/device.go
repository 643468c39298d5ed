// Package dryrun accepts input and window commands without touching a real
// device, logging each one. It pairs with a static screenshot screen.
package dryrun

import (
	"context"
	"strings"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var (
	_ output.InputPort  = (*Device)(nil)
	_ output.WindowPort = (*Device)(nil)
)

type Device struct {
	logger output.LoggerPort

	mu      sync.Mutex
	cursor  entity.Point
	windows []output.WindowInfo
}

func New(logger output.LoggerPort) *Device {
	return &Device{logger: logger}
}

func (d *Device) MoveTo(ctx context.Context, p entity.Point) error {
	d.mu.Lock()
	d.cursor = p
	d.mu.Unlock()
	d.logger.Debug("Dry run: move", "x", p.X, "y", p.Y)
	return ctx.Err()
}

func (d *Device) MouseDown(ctx context.Context, button entity.MouseButton) error {
	d.logger.Info("Dry run: mouse down", "button", button)
	return ctx.Err()
}

func (d *Device) MouseUp(ctx context.Context, button entity.MouseButton) error {
	d.logger.Info("Dry run: mouse up", "button", button)
	return ctx.Err()
}

func (d *Device) Click(ctx context.Context, button entity.MouseButton, count int) error {
	p, _ := d.CursorPosition(ctx)
	d.logger.Info("Dry run: click", "button", button, "count", count, "x", p.X, "y", p.Y)
	return ctx.Err()
}

func (d *Device) Scroll(ctx context.Context, dx, dy int) error {
	d.logger.Info("Dry run: scroll", "dx", dx, "dy", dy)
	return ctx.Err()
}

func (d *Device) CursorPosition(ctx context.Context) (entity.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor, nil
}

func (d *Device) KeyDown(ctx context.Context, key string) error {
	d.logger.Info("Dry run: key down", "key", key)
	return ctx.Err()
}

func (d *Device) KeyUp(ctx context.Context, key string) error {
	d.logger.Debug("Dry run: key up", "key", key)
	return ctx.Err()
}

func (d *Device) TypeText(ctx context.Context, text string) error {
	d.logger.Info("Dry run: type", "chars", len([]rune(text)))
	return ctx.Err()
}

func (d *Device) Open(ctx context.Context, app string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.windows {
		d.windows[i].Active = false
	}
	d.windows = append(d.windows, output.WindowInfo{Title: app, Active: true})
	d.logger.Info("Dry run: open window", "app", app)
	return nil
}

func (d *Device) index(title string) int {
	want := strings.ToLower(title)
	for i, w := range d.windows {
		if strings.Contains(strings.ToLower(w.Title), want) {
			return i
		}
	}
	return -1
}

func (d *Device) Close(ctx context.Context, title string, force bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.index(title)
	if i < 0 {
		return entity.NewNotFoundError("close window", "window "+title)
	}
	d.windows = append(d.windows[:i], d.windows[i+1:]...)
	d.logger.Info("Dry run: close window", "title", title, "force", force)
	return nil
}

func (d *Device) Switch(ctx context.Context, title string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.index(title)
	if i < 0 {
		return entity.NewNotFoundError("switch window", "window "+title)
	}
	for j := range d.windows {
		d.windows[j].Active = j == i
	}
	d.logger.Info("Dry run: switch window", "title", title)
	return nil
}

func (d *Device) Resize(ctx context.Context, title string, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.index(title)
	if i < 0 {
		return entity.NewNotFoundError("resize window", "window "+title)
	}
	d.windows[i].Bounds = entity.NewRect(d.windows[i].Bounds.X, d.windows[i].Bounds.Y, width, height)
	d.logger.Info("Dry run: resize window", "title", title, "width", width, "height", height)
	return nil
}

func (d *Device) List(ctx context.Context) ([]output.WindowInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]output.WindowInfo(nil), d.windows...), nil
}
