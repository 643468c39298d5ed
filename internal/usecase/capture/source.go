// Package capture validates capture requests and caches the latest full
// screen frame.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"desktop-agent/internal/application/port/input"
	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var _ input.ScreenSource = (*UseCase)(nil)

const (
	DefaultTTL = time.Second
	// EdgeMargin is the distance from a screen edge below which points are
	// reported as risky.
	EdgeMargin = 10
)

type UseCase struct {
	screen output.ScreenPort
	logger output.LoggerPort
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	cached *entity.Frame
}

func New(screen output.ScreenPort, logger output.LoggerPort, ttl time.Duration) *UseCase {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UseCase{
		screen: screen,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (uc *UseCase) Size(ctx context.Context) (int, int, error) {
	w, h, err := uc.screen.ScreenSize(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("query screen size: %w", err)
	}
	return w, h, nil
}

// See returns the cached full-screen frame while it is younger than the TTL,
// capturing a new one otherwise or when force is set.
func (uc *UseCase) See(ctx context.Context, force bool) (*entity.Frame, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !force && uc.cached != nil && uc.cached.Age(uc.now()) < uc.ttl {
		return uc.cached, nil
	}
	frame, err := uc.screen.CaptureFullScreen(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	frame.CapturedAt = uc.now()
	uc.cached = frame
	uc.logger.Debug("Screen captured", "width", frame.Width(), "height", frame.Height(), "source", frame.Source)
	return frame, nil
}

func (uc *UseCase) Invalidate() {
	uc.mu.Lock()
	uc.cached = nil
	uc.mu.Unlock()
}

// Region validates r against the screen before capturing it.
func (uc *UseCase) Region(ctx context.Context, r entity.Rect) (*entity.Frame, error) {
	if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 {
		return nil, entity.NewInvalidRegionError("capture region", r)
	}
	w, h, err := uc.Size(ctx)
	if err != nil {
		return nil, err
	}
	if r.X+r.Width > w || r.Y+r.Height > h {
		return nil, entity.NewInvalidCoordinatesError("capture region", r, w, h)
	}
	frame, err := uc.screen.CaptureRegion(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("capture region %s: %w", r, err)
	}
	return frame, nil
}

func (uc *UseCase) Window(ctx context.Context, title string) (*entity.Frame, error) {
	frame, err := uc.screen.CaptureWindow(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("capture window %q: %w", title, err)
	}
	return frame, nil
}

// ValidatePoint rejects points outside the screen and warns about points
// within EdgeMargin of an edge.
func (uc *UseCase) ValidatePoint(ctx context.Context, op string, p entity.Point) error {
	w, h, err := uc.Size(ctx)
	if err != nil {
		return err
	}
	if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
		return entity.NewInvalidCoordinatesError(op, entity.NewRect(p.X, p.Y, 1, 1), w, h)
	}
	if p.X < EdgeMargin || p.Y < EdgeMargin || p.X >= w-EdgeMargin || p.Y >= h-EdgeMargin {
		uc.logger.Warn("Point is close to the screen edge", "op", op, "point", p.String(), "margin", EdgeMargin)
	}
	return nil
}
