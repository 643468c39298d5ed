// Package perception combines capture, recognition and location into
// see-then-act operations.
package perception

import (
	"context"
	"fmt"
	"time"

	"desktop-agent/internal/application/port/input"
	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/usecase/ocr"
)

var _ input.Perception = (*UseCase)(nil)

const (
	DefaultWaitTimeout  = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond

	scrollClicks = 3
)

// TextReader is the part of the OCR cascade used to read the whole screen.
type TextReader interface {
	ExtractText(ctx context.Context, frame *entity.Frame, opts ocr.ExtractOptions) entity.OCRResult
}

type UseCase struct {
	screen  input.ScreenSource
	locator input.ElementLocator
	text    TextReader
	actions input.ActionExecutor
	retry   input.RetryCoordinator
	sleeper output.Sleeper
	logger  output.LoggerPort
	now     func() time.Time
}

func New(
	screen input.ScreenSource,
	locator input.ElementLocator,
	text TextReader,
	actions input.ActionExecutor,
	retry input.RetryCoordinator,
	sleeper output.Sleeper,
	logger output.LoggerPort,
) *UseCase {
	return &UseCase{
		screen:  screen,
		locator: locator,
		text:    text,
		actions: actions,
		retry:   retry,
		sleeper: sleeper,
		logger:  logger,
		now:     time.Now,
	}
}

func (uc *UseCase) See(ctx context.Context, force bool) (*entity.Frame, error) {
	return uc.screen.See(ctx, force)
}

// ReadScreen recognizes all text on the current screen.
func (uc *UseCase) ReadScreen(ctx context.Context, preprocess entity.PreprocessMethod) (entity.OCRResult, error) {
	frame, err := uc.screen.See(ctx, false)
	if err != nil {
		return entity.OCRResult{}, err
	}
	res := uc.text.ExtractText(ctx, frame, ocr.ExtractOptions{Preprocess: preprocess})
	if !res.Success {
		return res, entity.NewRecognitionFailedError("read screen", "no engine recognized any text")
	}
	uc.logger.Debug("Screen read", "engine", res.EngineUsed, "chars", len(res.Text), "confidence", res.Confidence)
	return res, nil
}

// FindAndClick locates the described element and clicks its center. Each
// attempt reads the search parameters chosen by the retry coordinator, so a
// miss leads to a fresh capture, relaxed matching and eventually scrolling.
func (uc *UseCase) FindAndClick(ctx context.Context, description string) entity.ActionResult {
	rc := entity.NewRetryContext("find_and_click", description, entity.RetryParams{})
	return uc.retry.Execute(ctx, rc, func(ctx context.Context, params entity.RetryParams) entity.ActionResult {
		if params.TryScroll {
			uc.scroll(ctx, params.ScrollDirection)
		}

		frame, err := uc.screen.See(ctx, params.ForceNewCapture || params.TryScroll)
		if err != nil {
			return entity.FailedWith(err)
		}
		p, ok := uc.locator.Tuned(params).LocatePrecisely(ctx, description, frame)
		if !ok {
			return entity.FailedWith(entity.NewNotFoundError("find and click", fmt.Sprintf("element %q", description)))
		}

		target := frame.ToScreen(p)
		uc.logger.Info("Element located", "description", description, "point", target.String(), "method", params.DetectionMethod)
		res := uc.actions.Execute(ctx, entity.ActionRequest{
			Type:   entity.ActionClick,
			Params: entity.ActionParams{X: target.X, Y: target.Y},
			Retry:  params,
		})
		if res.Success {
			res.Data["description"] = description
		}
		return res
	})
}

// scroll is best effort: a failed scroll still leaves the next capture to
// decide whether the element is visible.
func (uc *UseCase) scroll(ctx context.Context, direction string) {
	clicks := scrollClicks
	if direction == "down" {
		clicks = -scrollClicks
	}
	res := uc.actions.Execute(ctx, entity.ActionRequest{
		Type:   entity.ActionScroll,
		Params: entity.ActionParams{Clicks: clicks},
	})
	if !res.Success {
		uc.logger.Warn("Scroll before search failed", "direction", direction, "message", res.Message)
	}
}

// WaitForElement polls with fresh captures until the element shows up or the
// timeout passes. Zero timeout and interval fall back to the defaults.
func (uc *UseCase) WaitForElement(ctx context.Context, description string, timeout, interval time.Duration) (entity.Point, error) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	start := uc.now()
	for polls := 1; ; polls++ {
		frame, err := uc.screen.See(ctx, true)
		if err != nil {
			uc.logger.Warn("Capture failed while waiting", "description", description, "error", err)
		}
		if frame != nil {
			if p, ok := uc.locator.LocatePrecisely(ctx, description, frame); ok {
				target := frame.ToScreen(p)
				uc.logger.Info("Element appeared", "description", description, "point", target.String(), "polls", polls)
				return target, nil
			}
		}

		if uc.now().Sub(start) >= timeout {
			return entity.Point{}, entity.NewTimeoutError("wait for element",
				fmt.Errorf("%q not visible after %s", description, timeout))
		}
		if err := uc.sleeper.Sleep(ctx, interval); err != nil {
			return entity.Point{}, entity.NewTimeoutError("wait for element", err)
		}
	}
}
