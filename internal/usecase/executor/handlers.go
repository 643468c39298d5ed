package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"desktop-agent/internal/application/service"
	"desktop-agent/internal/domain/entity"
)

var errMissingParam = errors.New("missing parameter")

func (uc *UseCase) registerHandlers() {
	r := uc.handlers
	r.Register(entity.ActionClick, uc.click(1, entity.ButtonLeft))
	r.Register(entity.ActionDoubleClick, uc.click(2, entity.ButtonLeft))
	r.Register(entity.ActionRightClick, uc.click(1, entity.ButtonRight))
	r.Register(entity.ActionTypeText, uc.typeText)
	r.Register(entity.ActionKeyPress, uc.keyPress)
	r.Register(entity.ActionHotkey, uc.hotkey)
	r.Register(entity.ActionDrag, uc.drag)
	r.Register(entity.ActionScroll, uc.scroll)
	r.Register(entity.ActionMove, uc.move)
	r.Register(entity.ActionWindowOpen, uc.windowOpen)
	r.Register(entity.ActionWindowClose, uc.windowClose)
	r.Register(entity.ActionWindowSwitch, uc.windowSwitch)
	r.Register(entity.ActionWindowResize, uc.windowResize)
	r.Register(entity.ActionWait, uc.wait)
}

// moveTo glides the cursor to p along a human-like path when enabled.
func (uc *UseCase) moveTo(ctx context.Context, p entity.Point, d time.Duration) error {
	if !uc.cfg.HumanMovement {
		return uc.mouse.MoveTo(ctx, p)
	}
	from, err := uc.mouse.CursorPosition(ctx)
	if err != nil {
		return fmt.Errorf("read cursor: %w", err)
	}

	uc.rngMu.Lock()
	path := HumanPath(from, p, uc.rng)
	uc.rngMu.Unlock()

	step := d / time.Duration(len(path))
	for i, pt := range path {
		if err := uc.mouse.MoveTo(ctx, pt); err != nil {
			return fmt.Errorf("move mouse to %s: %w", pt, err)
		}
		if i < len(path)-1 && step > 0 {
			if err := uc.sleeper.Sleep(ctx, step); err != nil {
				return entity.NewTimeoutError("move", err)
			}
		}
	}
	return nil
}

func (uc *UseCase) pause(ctx context.Context, op string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := uc.sleeper.Sleep(ctx, d); err != nil {
		return entity.NewTimeoutError(op, err)
	}
	return nil
}

func (uc *UseCase) click(count int, button entity.MouseButton) service.ActionHandler {
	return func(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
		btn, n := button, count
		if req.Type == entity.ActionClick && req.Params.Button != "" {
			if !req.Params.Button.Valid() {
				return "", nil, fmt.Errorf("%w: unknown mouse button %q", errMissingParam, req.Params.Button)
			}
			btn = req.Params.Button
		}
		switch req.Retry.ClickMethod {
		case entity.ClickSingle:
			n = 1
		case entity.ClickDouble:
			n = 2
		case entity.ClickRight:
			btn = entity.ButtonRight
		case entity.ClickMiddle:
			btn = entity.ButtonMiddle
		}

		target := entity.Point{X: req.Params.X, Y: req.Params.Y}.Add(req.Retry.ClickOffset.X, req.Retry.ClickOffset.Y)
		if err := uc.screen.ValidatePoint(ctx, string(req.Type), target); err != nil {
			return "", nil, err
		}
		if err := uc.pause(ctx, "click", req.Retry.PreClickWait); err != nil {
			return "", nil, err
		}
		if err := uc.moveTo(ctx, target, uc.cfg.MoveDuration); err != nil {
			return "", nil, err
		}

		if hold := req.Retry.ClickHold; hold > 0 && n == 1 {
			if err := uc.mouse.MouseDown(ctx, btn); err != nil {
				return "", nil, fmt.Errorf("press %s button: %w", btn, err)
			}
			holdErr := uc.pause(ctx, "click", hold)
			if err := uc.mouse.MouseUp(ctx, btn); err != nil {
				return "", nil, fmt.Errorf("release %s button: %w", btn, err)
			}
			if holdErr != nil {
				return "", nil, holdErr
			}
		} else if err := uc.mouse.Click(ctx, btn, n); err != nil {
			return "", nil, fmt.Errorf("click %s at %s: %w", btn, target, err)
		}

		return fmt.Sprintf("clicked %s x%d at %s", btn, n, target), map[string]any{
			"x":      target.X,
			"y":      target.Y,
			"button": string(btn),
			"clicks": n,
		}, nil
	}
}

func (uc *UseCase) typeText(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	text := req.Params.Text
	if text == "" {
		return "", nil, fmt.Errorf("%w: type needs text", errMissingParam)
	}
	if err := checkText(text); err != nil {
		return "", nil, err
	}

	if req.Retry.Refocus {
		if err := uc.mouse.Click(ctx, entity.ButtonLeft, 1); err != nil {
			return "", nil, fmt.Errorf("refocus input: %w", err)
		}
	}
	if req.Retry.ClearBeforeInput {
		if err := uc.pressCombo(ctx, []string{"ctrl", "a"}); err != nil {
			return "", nil, fmt.Errorf("select input: %w", err)
		}
		if err := uc.pressCombo(ctx, []string{"delete"}); err != nil {
			return "", nil, fmt.Errorf("clear input: %w", err)
		}
	}

	var pieces []string
	pauseBetween := uc.cfg.ChunkPause
	switch req.Retry.InputMethod {
	case entity.InputPaste:
		pieces = []string{text}
	case entity.InputSendKeys:
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		pauseBetween = req.Retry.InputDelay
	default:
		pieces = chunkText(text)
		if req.Retry.InputDelay > 0 {
			pauseBetween = req.Retry.InputDelay
		}
	}

	for i, p := range pieces {
		if i > 0 {
			if err := uc.pause(ctx, "type", pauseBetween); err != nil {
				return "", nil, err
			}
		}
		if err := uc.mouse.TypeText(ctx, p); err != nil {
			return "", nil, fmt.Errorf("type text: %w", err)
		}
	}

	runes := len([]rune(text))
	return fmt.Sprintf("typed %d characters", runes), map[string]any{
		"length": runes,
		"chunks": len(pieces),
	}, nil
}

// pressCombo presses keys in order and releases them in reverse, releasing
// whatever was pressed even when a later key fails.
func (uc *UseCase) pressCombo(ctx context.Context, keys []string) (err error) {
	pressed := make([]string, 0, len(keys))
	defer func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			if upErr := uc.mouse.KeyUp(ctx, pressed[i]); upErr != nil && err == nil {
				err = fmt.Errorf("release %s: %w", pressed[i], upErr)
			}
		}
	}()
	for _, k := range keys {
		if err := uc.mouse.KeyDown(ctx, k); err != nil {
			return fmt.Errorf("press %s: %w", k, err)
		}
		pressed = append(pressed, k)
	}
	return nil
}

func (uc *UseCase) keyPress(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	key := req.Params.Key
	if key == "" {
		return "", nil, fmt.Errorf("%w: key_press needs a key", errMissingParam)
	}
	if err := checkHotkey("key_press", []string{key}); err != nil {
		return "", nil, err
	}
	if err := uc.pressCombo(ctx, []string{key}); err != nil {
		return "", nil, err
	}
	return "pressed " + key, map[string]any{"key": key}, nil
}

func (uc *UseCase) hotkey(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	keys := req.Params.Keys
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: hotkey needs keys", errMissingParam)
	}
	if err := checkHotkey("hotkey", keys); err != nil {
		return "", nil, err
	}
	if err := uc.pressCombo(ctx, keys); err != nil {
		return "", nil, err
	}
	combo := normalizeCombo(keys)
	return "pressed " + combo, map[string]any{"keys": combo}, nil
}

func (uc *UseCase) drag(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	from := entity.Point{X: req.Params.X, Y: req.Params.Y}
	to := entity.Point{X: req.Params.EndX, Y: req.Params.EndY}
	for _, p := range []entity.Point{from, to} {
		if err := uc.screen.ValidatePoint(ctx, "drag", p); err != nil {
			return "", nil, err
		}
	}
	btn := req.Params.Button
	if btn == "" {
		btn = entity.ButtonLeft
	}

	if err := uc.moveTo(ctx, from, uc.cfg.MoveDuration); err != nil {
		return "", nil, err
	}
	if err := uc.mouse.MouseDown(ctx, btn); err != nil {
		return "", nil, fmt.Errorf("press %s button: %w", btn, err)
	}
	moveErr := uc.moveTo(ctx, to, uc.cfg.DragDuration)
	if err := uc.mouse.MouseUp(ctx, btn); err != nil {
		return "", nil, fmt.Errorf("release %s button: %w", btn, err)
	}
	if moveErr != nil {
		return "", nil, moveErr
	}
	return fmt.Sprintf("dragged %s to %s", from, to), map[string]any{
		"from": from.String(),
		"to":   to.String(),
	}, nil
}

// scroll turns positive clicks into upward wheel movement.
func (uc *UseCase) scroll(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	clicks := req.Params.Clicks
	if clicks == 0 {
		return "", nil, fmt.Errorf("%w: scroll needs a non-zero clicks count", errMissingParam)
	}
	if req.Params.X != 0 || req.Params.Y != 0 {
		p := entity.Point{X: req.Params.X, Y: req.Params.Y}
		if err := uc.screen.ValidatePoint(ctx, "scroll", p); err != nil {
			return "", nil, err
		}
		if err := uc.moveTo(ctx, p, uc.cfg.MoveDuration); err != nil {
			return "", nil, err
		}
	}
	if err := uc.mouse.Scroll(ctx, 0, -clicks); err != nil {
		return "", nil, fmt.Errorf("scroll: %w", err)
	}
	return fmt.Sprintf("scrolled %d clicks", clicks), map[string]any{"clicks": clicks}, nil
}

func (uc *UseCase) move(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	p := entity.Point{X: req.Params.X, Y: req.Params.Y}
	if err := uc.screen.ValidatePoint(ctx, "move", p); err != nil {
		return "", nil, err
	}
	d := req.Params.Duration
	if d <= 0 {
		d = uc.cfg.MoveDuration
	}
	if err := uc.moveTo(ctx, p, d); err != nil {
		return "", nil, err
	}
	return "moved to " + p.String(), map[string]any{"x": p.X, "y": p.Y}, nil
}

func (uc *UseCase) windowOpen(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	if req.Params.App == "" {
		return "", nil, fmt.Errorf("%w: window_open needs app_name", errMissingParam)
	}
	if err := uc.windows.Open(ctx, req.Params.App); err != nil {
		return "", nil, fmt.Errorf("open %s: %w", req.Params.App, err)
	}
	return "opened " + req.Params.App, map[string]any{"app": req.Params.App}, nil
}

func (uc *UseCase) windowClose(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	title := req.Params.App
	if title == "" {
		title = req.Params.Title
	}
	if title == "" {
		return "", nil, fmt.Errorf("%w: window_close needs app_name or window_title", errMissingParam)
	}
	if err := uc.windows.Close(ctx, title, req.Params.Force); err != nil {
		return "", nil, fmt.Errorf("close %s: %w", title, err)
	}
	return "closed " + title, map[string]any{"window": title, "force": req.Params.Force}, nil
}

func (uc *UseCase) windowSwitch(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	if req.Params.Title == "" {
		return "", nil, fmt.Errorf("%w: window_switch needs window_title", errMissingParam)
	}
	if err := uc.windows.Switch(ctx, req.Params.Title); err != nil {
		return "", nil, fmt.Errorf("switch to %s: %w", req.Params.Title, err)
	}
	return "switched to " + req.Params.Title, map[string]any{"window": req.Params.Title}, nil
}

func (uc *UseCase) windowResize(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	p := req.Params
	if p.Title == "" || p.Width <= 0 || p.Height <= 0 {
		return "", nil, fmt.Errorf("%w: window_resize needs window_title, width and height", errMissingParam)
	}
	if err := uc.windows.Resize(ctx, p.Title, p.Width, p.Height); err != nil {
		return "", nil, fmt.Errorf("resize %s: %w", p.Title, err)
	}
	return fmt.Sprintf("resized %s to %dx%d", p.Title, p.Width, p.Height), map[string]any{
		"window": p.Title,
		"width":  p.Width,
		"height": p.Height,
	}, nil
}

func (uc *UseCase) wait(ctx context.Context, req entity.ActionRequest) (string, map[string]any, error) {
	if req.Params.Duration < 0 {
		return "", nil, fmt.Errorf("%w: negative wait duration", errMissingParam)
	}
	if err := uc.pause(ctx, "wait", req.Params.Duration); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("waited %s", req.Params.Duration), map[string]any{"duration": req.Params.Duration.Seconds()}, nil
}
