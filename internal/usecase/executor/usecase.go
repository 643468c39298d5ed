// Package executor performs declarative desktop actions through the input
// and window ports.
package executor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"desktop-agent/internal/application/port/input"
	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/application/service"
	"desktop-agent/internal/domain/entity"
)

var _ input.ActionExecutor = (*UseCase)(nil)

type Config struct {
	StopOnFailure bool
	// DefaultDelay is the pause between sequence steps unless the action
	// carries its own.
	DefaultDelay    time.Duration
	ClickRetryDelay time.Duration
	HumanMovement   bool
	MoveDuration    time.Duration
	DragDuration    time.Duration
	ChunkPause      time.Duration
}

func DefaultConfig() Config {
	return Config{
		DefaultDelay:    500 * time.Millisecond,
		ClickRetryDelay: 500 * time.Millisecond,
		HumanMovement:   true,
		MoveDuration:    300 * time.Millisecond,
		DragDuration:    500 * time.Millisecond,
		ChunkPause:      100 * time.Millisecond,
	}
}

type UseCase struct {
	cfg      Config
	screen   input.ScreenSource
	mouse    output.InputPort
	windows  output.WindowPort
	retry    input.RetryCoordinator
	sleeper  output.Sleeper
	logger   output.LoggerPort
	metrics  output.MetricsPort
	handlers *service.HandlerRegistry
	history  history
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(
	cfg Config,
	screen input.ScreenSource,
	mouse output.InputPort,
	windows output.WindowPort,
	retry input.RetryCoordinator,
	sleeper output.Sleeper,
	rng *rand.Rand,
	logger output.LoggerPort,
	metrics output.MetricsPort,
) *UseCase {
	uc := &UseCase{
		cfg:      cfg,
		screen:   screen,
		mouse:    mouse,
		windows:  windows,
		retry:    retry,
		sleeper:  sleeper,
		rng:      rng,
		logger:   logger,
		metrics:  metrics,
		handlers: service.NewHandlerRegistry(),
		now:      time.Now,
	}
	uc.registerHandlers()
	return uc
}

// Execute runs one action. Adapter errors and panics become failed results
// tagged with a failure type; every call is recorded in the history.
func (uc *UseCase) Execute(ctx context.Context, req entity.ActionRequest) entity.ActionResult {
	uc.logger.Info("Executing action", "type", req.Type, "target", req.Target())

	start := uc.now()
	res := uc.dispatch(ctx, req)
	elapsed := uc.now().Sub(start)

	uc.history.append(entity.NewOperationRecord(req, res, elapsed, start))
	uc.metrics.ObserveAction(req.Type, res.Success, elapsed)

	if res.Success {
		uc.logger.Debug("Action completed", "type", req.Type, "message", res.Message, "elapsed", elapsed)
	} else {
		uc.logger.Warn("Action failed", "type", req.Type, "failure", res.Failure, "message", res.Message)
	}
	return res
}

func (uc *UseCase) dispatch(ctx context.Context, req entity.ActionRequest) (res entity.ActionResult) {
	handler, ok := uc.handlers.Get(req.Type)
	if !ok {
		return entity.FailedWith(entity.NewUnknownError("execute", fmt.Errorf("%w: %q", entity.ErrUnknownAction, req.Type)))
	}

	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Action handler panicked", "type", req.Type, "panic", r)
			res = entity.FailedWith(entity.NewActionFailedError(string(req.Type), failureFor(req.Type), fmt.Errorf("panic: %v", r)))
		}
	}()

	msg, data, err := handler(ctx, req)
	if err != nil {
		return entity.FailedWith(typed(req.Type, err))
	}
	return entity.Succeeded(msg, data)
}

// typed leaves AutomationErrors alone and wraps anything else as an action
// failure of the kind the action type implies.
func typed(t entity.ActionType, err error) error {
	var ae *entity.AutomationError
	if errors.As(err, &ae) {
		return err
	}
	return entity.NewActionFailedError(string(t), failureFor(t), err)
}

func failureFor(t entity.ActionType) entity.FailureType {
	switch t {
	case entity.ActionClick, entity.ActionDoubleClick, entity.ActionRightClick,
		entity.ActionDrag, entity.ActionScroll, entity.ActionMove:
		return entity.FailureClickFailed
	case entity.ActionTypeText, entity.ActionKeyPress, entity.ActionHotkey:
		return entity.FailureInputFailed
	case entity.ActionWait:
		return entity.FailureTimeout
	}
	return entity.FailureUnknown
}

// ExecuteSequence runs reqs in order, pausing between steps.
func (uc *UseCase) ExecuteSequence(ctx context.Context, reqs []entity.ActionRequest) []entity.ActionResult {
	return uc.sequence(ctx, reqs, uc.Execute)
}

// ExecuteSequenceWithRetry runs each step under the retry coordinator, then
// retunes the retry ceiling from the outcomes seen so far.
func (uc *UseCase) ExecuteSequenceWithRetry(ctx context.Context, reqs []entity.ActionRequest) []entity.ActionResult {
	results := uc.sequence(ctx, reqs, uc.ExecuteWithRetry)
	uc.logger.Info("Retry ceiling after sequence", "max_retries", uc.retry.OptimizeRetryParameters())
	return results
}

func (uc *UseCase) sequence(ctx context.Context, reqs []entity.ActionRequest, run func(context.Context, entity.ActionRequest) entity.ActionResult) []entity.ActionResult {
	uc.logger.Info("Executing sequence", "actions", len(reqs))

	results := make([]entity.ActionResult, 0, len(reqs))
	for i, req := range reqs {
		res := run(ctx, req)
		results = append(results, res)

		if !res.Success && uc.cfg.StopOnFailure {
			uc.logger.Warn("Stopping sequence after failure", "index", i)
			break
		}
		if i == len(reqs)-1 {
			break
		}
		delay := uc.cfg.DefaultDelay
		if req.Delay != nil {
			delay = *req.Delay
		}
		if delay > 0 {
			if err := uc.sleeper.Sleep(ctx, delay); err != nil {
				uc.logger.Warn("Sequence cancelled", "index", i, "error", err)
				break
			}
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	uc.logger.Info("Sequence finished", "succeeded", succeeded, "executed", len(results), "total", len(reqs))
	return results
}

// ExecuteWithRetry runs req under the retry coordinator, feeding the patched
// retry parameters into each attempt.
func (uc *UseCase) ExecuteWithRetry(ctx context.Context, req entity.ActionRequest) entity.ActionResult {
	rc := entity.NewRetryContext(string(req.Type), req.Target(), req.Retry)
	return uc.retry.Execute(ctx, rc, func(ctx context.Context, params entity.RetryParams) entity.ActionResult {
		attempt := req
		attempt.Retry = params
		return uc.Execute(ctx, attempt)
	})
}

// ClickWithRetry clicks p up to maxRetries+1 times with a fixed pause,
// stopping at the first success.
func (uc *UseCase) ClickWithRetry(ctx context.Context, p entity.Point, button entity.MouseButton, maxRetries int) entity.ActionResult {
	req := entity.ActionRequest{
		Type:   entity.ActionClick,
		Params: entity.ActionParams{X: p.X, Y: p.Y, Button: button},
	}

	var res entity.ActionResult
	for attempt := 0; attempt <= max(0, maxRetries); attempt++ {
		if attempt > 0 {
			uc.logger.Info("Retrying click", "attempt", attempt, "max_retries", maxRetries)
			if err := uc.sleeper.Sleep(ctx, uc.cfg.ClickRetryDelay); err != nil {
				break
			}
		}
		res = uc.Execute(ctx, req)
		if res.Success {
			res.Data["attempts"] = attempt + 1
			return res
		}
	}
	uc.logger.Error("Click retries exhausted", "point", p.String(), "max_retries", maxRetries)
	return res
}

func (uc *UseCase) History(limit int) []entity.OperationRecord {
	return uc.history.last(limit)
}

func (uc *UseCase) ClearHistory() {
	uc.history.clear()
}
