package executor

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"
	"desktop-agent/internal/testutil"
	"desktop-agent/internal/usecase/capture"
	"desktop-agent/internal/usecase/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	uc      *UseCase
	mouse   *testutil.FakeInput
	windows *testutil.FakeWindows
	sleeper *testutil.Sleeper
	metrics *testutil.RecordingMetrics
}

func newFixture(t *testing.T, mutate ...func(*Config)) fixture {
	t.Helper()
	cfg := DefaultConfig()
	cfg.HumanMovement = false
	for _, m := range mutate {
		m(&cfg)
	}

	f := fixture{
		mouse:   testutil.NewFakeInput(),
		windows: testutil.NewFakeWindows("Untitled - Notepad", "Terminal"),
		sleeper: &testutil.Sleeper{},
		metrics: &testutil.RecordingMetrics{},
	}
	log := logger.NewNop()
	screen := capture.New(testutil.NewFakeScreen(testutil.Blank(800, 600)), log, 0)
	coord := retry.New(retry.Config{MaxRetries: 3}, retry.NewStatsStore(), f.sleeper, rand.New(rand.NewSource(1)), log, f.metrics)
	f.uc = New(cfg, screen, f.mouse, f.windows, coord, f.sleeper, rand.New(rand.NewSource(2)), log, f.metrics)
	return f
}

func act(t entity.ActionType, p entity.ActionParams) entity.ActionRequest {
	return entity.ActionRequest{Type: t, Params: p}
}

func TestExecute_Clicks(t *testing.T) {
	tests := []struct {
		name   string
		req    entity.ActionRequest
		events []string
	}{
		{"click", act(entity.ActionClick, entity.ActionParams{X: 100, Y: 200}), []string{"move 100,200", "click left x1"}},
		{"click middle", act(entity.ActionClick, entity.ActionParams{X: 100, Y: 200, Button: entity.ButtonMiddle}), []string{"move 100,200", "click middle x1"}},
		{"double click", act(entity.ActionDoubleClick, entity.ActionParams{X: 50, Y: 60}), []string{"move 50,60", "click left x2"}},
		{"right click", act(entity.ActionRightClick, entity.ActionParams{X: 50, Y: 60}), []string{"move 50,60", "click right x1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res := f.uc.Execute(context.Background(), tt.req)
			require.True(t, res.Success, res.Message)
			assert.Equal(t, tt.events, f.mouse.Events())
		})
	}
}

func TestExecute_ClickData(t *testing.T) {
	f := newFixture(t)
	res := f.uc.Execute(context.Background(), act(entity.ActionClick, entity.ActionParams{X: 100, Y: 200}))

	require.True(t, res.Success)
	assert.Equal(t, map[string]any{"x": 100, "y": 200, "button": "left", "clicks": 1}, res.Data)
	assert.Equal(t, []entity.ActionType{entity.ActionClick}, f.metrics.Actions)
}

func TestExecute_ClickRetryParams(t *testing.T) {
	f := newFixture(t)
	req := act(entity.ActionClick, entity.ActionParams{X: 100, Y: 200})
	req.Retry = entity.RetryParams{
		ClickOffset:  entity.Point{X: 3, Y: -2},
		ClickMethod:  entity.ClickDouble,
		PreClickWait: 700 * time.Millisecond,
	}

	res := f.uc.Execute(context.Background(), req)

	require.True(t, res.Success)
	assert.Equal(t, []string{"move 103,198", "click left x2"}, f.mouse.Events())
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, f.sleeper.Recorded())
}

func TestExecute_ClickHold(t *testing.T) {
	f := newFixture(t)
	req := act(entity.ActionClick, entity.ActionParams{X: 10, Y: 20})
	req.Retry.ClickHold = 150 * time.Millisecond

	require.True(t, f.uc.Execute(context.Background(), req).Success)
	assert.Equal(t, []string{"move 10,20", "down left", "up left"}, f.mouse.Events())
	assert.Equal(t, []time.Duration{150 * time.Millisecond}, f.sleeper.Recorded())
}

func TestExecute_InvalidCoordinates(t *testing.T) {
	f := newFixture(t)
	for _, p := range []entity.ActionParams{{X: -1, Y: 10}, {X: 800, Y: 10}, {X: 10, Y: 600}} {
		res := f.uc.Execute(context.Background(), act(entity.ActionClick, p))
		assert.False(t, res.Success)
		assert.Equal(t, entity.FailureClickFailed, res.Failure)
		assert.Contains(t, res.Message, string(entity.ErrCodeInvalidCoordinates))
	}
	assert.Empty(t, f.mouse.Events())
	assert.Len(t, f.uc.History(0), 3)
}

func TestExecute_AdapterFailures(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		f := newFixture(t)
		f.mouse.Fail["click"] = errors.New("device busy")

		res := f.uc.Execute(context.Background(), act(entity.ActionClick, entity.ActionParams{X: 1, Y: 1}))

		assert.False(t, res.Success)
		assert.Equal(t, entity.FailureClickFailed, res.Failure)
		assert.Contains(t, res.Message, "device busy")
	})

	t.Run("panic", func(t *testing.T) {
		f := newFixture(t)
		f.mouse.Panic["type"] = true

		res := f.uc.Execute(context.Background(), act(entity.ActionTypeText, entity.ActionParams{Text: "hi"}))

		assert.False(t, res.Success)
		assert.Equal(t, entity.FailureInputFailed, res.Failure)
		assert.Contains(t, res.Message, "panic")
		assert.Len(t, f.uc.History(0), 1)
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newFixture(t)
		res := f.uc.Execute(context.Background(), act(entity.ActionType("teleport"), entity.ActionParams{}))
		assert.False(t, res.Success)
		assert.Equal(t, entity.FailureUnknown, res.Failure)
	})

	t.Run("window not found", func(t *testing.T) {
		f := newFixture(t)
		res := f.uc.Execute(context.Background(), act(entity.ActionWindowSwitch, entity.ActionParams{Title: "Browser"}))
		assert.False(t, res.Success)
		assert.Equal(t, entity.FailureElementNotFound, res.Failure)
	})
}

func TestExecute_TypeText(t *testing.T) {
	t.Run("short text in one call", func(t *testing.T) {
		f := newFixture(t)
		res := f.uc.Execute(context.Background(), act(entity.ActionTypeText, entity.ActionParams{Text: "hello"}))
		require.True(t, res.Success)
		assert.Equal(t, []string{"type hello"}, f.mouse.Events())
		assert.Equal(t, 5, res.Data["length"])
	})

	t.Run("long text in chunks", func(t *testing.T) {
		f := newFixture(t)
		res := f.uc.Execute(context.Background(), act(entity.ActionTypeText, entity.ActionParams{Text: strings.Repeat("é", 1200)}))
		require.True(t, res.Success)
		assert.Equal(t, 3, f.mouse.Count("type"))
		assert.Equal(t, 3, res.Data["chunks"])
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, f.sleeper.Recorded())
	})

	t.Run("clear, refocus and send keys", func(t *testing.T) {
		f := newFixture(t)
		req := act(entity.ActionTypeText, entity.ActionParams{Text: "ab"})
		req.Retry = entity.RetryParams{
			ClearBeforeInput: true,
			Refocus:          true,
			InputMethod:      entity.InputSendKeys,
			InputDelay:       30 * time.Millisecond,
		}
		require.True(t, f.uc.Execute(context.Background(), req).Success)
		assert.Equal(t, []string{
			"click left x1",
			"keydown ctrl", "keydown a", "keyup a", "keyup ctrl",
			"keydown delete", "keyup delete",
			"type a", "type b",
		}, f.mouse.Events())
		assert.Equal(t, []time.Duration{30 * time.Millisecond}, f.sleeper.Recorded())
	})

	t.Run("unsafe input", func(t *testing.T) {
		for _, text := range []string{"sudo RM  -rf /", "del /s *", "format C:", "shutdown now", strings.Repeat("a", 10001)} {
			f := newFixture(t)
			res := f.uc.Execute(context.Background(), act(entity.ActionTypeText, entity.ActionParams{Text: text}))
			assert.False(t, res.Success)
			assert.Equal(t, entity.FailurePermissionDenied, res.Failure)
			assert.Empty(t, f.mouse.Events())
		}
	})

	t.Run("missing text", func(t *testing.T) {
		f := newFixture(t)
		res := f.uc.Execute(context.Background(), act(entity.ActionTypeText, entity.ActionParams{}))
		assert.False(t, res.Success)
		assert.Equal(t, entity.FailureInputFailed, res.Failure)
	})
}

func TestExecute_Keys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.uc.Execute(ctx, act(entity.ActionHotkey, entity.ActionParams{Keys: []string{"ctrl", "c"}})).Success)
	require.True(t, f.uc.Execute(ctx, act(entity.ActionKeyPress, entity.ActionParams{Key: "enter"})).Success)
	assert.Equal(t, []string{
		"keydown ctrl", "keydown c", "keyup c", "keyup ctrl",
		"keydown enter", "keyup enter",
	}, f.mouse.Events())

	for _, keys := range [][]string{{"win", "r"}, {"Ctrl", "Alt", "Del"}} {
		res := f.uc.Execute(ctx, act(entity.ActionHotkey, entity.ActionParams{Keys: keys}))
		assert.Equal(t, entity.FailurePermissionDenied, res.Failure, keys)
	}
	assert.Len(t, f.mouse.Events(), 6)
}

func TestExecute_HotkeyReleasesOnFailure(t *testing.T) {
	f := newFixture(t)
	f.mouse.Fail["keydown"] = errors.New("stuck")
	f.mouse.FailTimes["keydown"] = 1

	res := f.uc.Execute(context.Background(), act(entity.ActionHotkey, entity.ActionParams{Keys: []string{"ctrl", "v"}}))

	assert.False(t, res.Success)
	assert.Equal(t, entity.FailureInputFailed, res.Failure)
	assert.Empty(t, f.mouse.Events())
}

func TestExecute_DragScrollMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.uc.Execute(ctx, act(entity.ActionDrag, entity.ActionParams{X: 10, Y: 20, EndX: 300, EndY: 400})).Success)
	require.True(t, f.uc.Execute(ctx, act(entity.ActionScroll, entity.ActionParams{Clicks: 3})).Success)
	require.True(t, f.uc.Execute(ctx, act(entity.ActionScroll, entity.ActionParams{Clicks: -2, X: 50, Y: 50})).Success)
	require.True(t, f.uc.Execute(ctx, act(entity.ActionMove, entity.ActionParams{X: 70, Y: 80})).Success)

	assert.Equal(t, []string{
		"move 10,20", "down left", "move 300,400", "up left",
		"scroll 0,-3",
		"move 50,50", "scroll 0,2",
		"move 70,80",
	}, f.mouse.Events())

	res := f.uc.Execute(ctx, act(entity.ActionScroll, entity.ActionParams{}))
	assert.False(t, res.Success)
	res = f.uc.Execute(ctx, act(entity.ActionDrag, entity.ActionParams{X: 10, Y: 20, EndX: 900, EndY: 400}))
	assert.Equal(t, entity.FailureClickFailed, res.Failure)
}

func TestExecute_HumanMovement(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.HumanMovement = true })

	res := f.uc.Execute(context.Background(), act(entity.ActionMove, entity.ActionParams{X: 400, Y: 300, Duration: time.Second}))

	require.True(t, res.Success)
	events := f.mouse.Events()
	require.Len(t, events, 10)
	assert.Equal(t, "move 400,300", events[len(events)-1])
	assert.Len(t, f.sleeper.Recorded(), 9)
	assert.Equal(t, 100*time.Millisecond, f.sleeper.Recorded()[0])
}

func TestExecute_Windows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.uc.Execute(ctx, act(entity.ActionWindowOpen, entity.ActionParams{App: "Calculator"})).Success)
	require.True(t, f.uc.Execute(ctx, act(entity.ActionWindowSwitch, entity.ActionParams{Title: "notepad"})).Success)
	require.True(t, f.uc.Execute(ctx, act(entity.ActionWindowResize, entity.ActionParams{Title: "Terminal", Width: 640, Height: 480})).Success)
	require.True(t, f.uc.Execute(ctx, act(entity.ActionWindowClose, entity.ActionParams{App: "Calculator", Force: true})).Success)

	wins, err := f.windows.List(ctx)
	require.NoError(t, err)
	require.Len(t, wins, 2)
	assert.True(t, wins[0].Active)
	assert.Equal(t, 640, wins[1].Bounds.Width)

	res := f.uc.Execute(ctx, act(entity.ActionWindowResize, entity.ActionParams{Title: "Terminal"}))
	assert.False(t, res.Success)
}

func TestExecute_Wait(t *testing.T) {
	f := newFixture(t)
	res := f.uc.Execute(context.Background(), act(entity.ActionWait, entity.ActionParams{Duration: 2 * time.Second}))
	require.True(t, res.Success)
	assert.Equal(t, []time.Duration{2 * time.Second}, f.sleeper.Recorded())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = f.uc.Execute(ctx, act(entity.ActionWait, entity.ActionParams{Duration: time.Second}))
	assert.Equal(t, entity.FailureTimeout, res.Failure)
}

func TestExecuteSequence(t *testing.T) {
	override := 2 * time.Second
	reqs := []entity.ActionRequest{
		act(entity.ActionClick, entity.ActionParams{X: 1, Y: 1}),
		{Type: entity.ActionKeyPress, Params: entity.ActionParams{Key: "tab"}, Delay: &override},
		act(entity.ActionClick, entity.ActionParams{X: -1, Y: 1}),
		act(entity.ActionKeyPress, entity.ActionParams{Key: "enter"}),
	}

	t.Run("continues after failure", func(t *testing.T) {
		f := newFixture(t)
		results := f.uc.ExecuteSequence(context.Background(), reqs)

		require.Len(t, results, 4)
		assert.True(t, results[0].Success)
		assert.False(t, results[2].Success)
		assert.True(t, results[3].Success)
		assert.Equal(t, []time.Duration{500 * time.Millisecond, 2 * time.Second, 500 * time.Millisecond}, f.sleeper.Recorded())
	})

	t.Run("stops on failure", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.StopOnFailure = true })
		results := f.uc.ExecuteSequence(context.Background(), reqs)

		assert.Len(t, results, 3)
		assert.Len(t, f.sleeper.Recorded(), 2)
	})

	t.Run("cancelled between steps", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		results := f.uc.ExecuteSequence(ctx, reqs)
		assert.Len(t, results, 1)
	})
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		f.uc.Execute(ctx, act(entity.ActionWait, entity.ActionParams{}))
	}
	assert.Len(t, f.uc.History(0), 1000)

	f.uc.Execute(ctx, act(entity.ActionKeyPress, entity.ActionParams{Key: "last"}))
	all := f.uc.History(0)
	assert.Len(t, all, 500)
	assert.Equal(t, "last", all[len(all)-1].Params.Key)

	recent := f.uc.History(2)
	require.Len(t, recent, 2)
	assert.Equal(t, entity.ActionWait, recent[0].Type)
	assert.Equal(t, entity.ActionKeyPress, recent[1].Type)
	assert.NotEmpty(t, recent[1].ID)

	f.uc.ClearHistory()
	assert.Empty(t, f.uc.History(0))
}

func TestClickWithRetry(t *testing.T) {
	t.Run("stops at first success", func(t *testing.T) {
		f := newFixture(t)
		f.mouse.Fail["click"] = errors.New("missed")
		f.mouse.FailTimes["click"] = 2

		res := f.uc.ClickWithRetry(context.Background(), entity.Point{X: 5, Y: 5}, entity.ButtonLeft, 3)

		require.True(t, res.Success)
		assert.Equal(t, 3, res.Data["attempts"])
		assert.Equal(t, 3, f.mouse.Count("click"))
		assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, f.sleeper.Recorded())
	})

	t.Run("at most max retries plus one", func(t *testing.T) {
		f := newFixture(t)
		f.mouse.Fail["click"] = errors.New("missed")

		res := f.uc.ClickWithRetry(context.Background(), entity.Point{X: 5, Y: 5}, entity.ButtonLeft, 3)

		assert.False(t, res.Success)
		assert.Equal(t, 4, f.mouse.Count("click"))
	})
}

func TestExecuteWithRetry(t *testing.T) {
	f := newFixture(t)
	f.mouse.Fail["click"] = errors.New("mouse jammed")
	f.mouse.FailTimes["click"] = 1

	res := f.uc.ExecuteWithRetry(context.Background(), act(entity.ActionClick, entity.ActionParams{X: 40, Y: 40}))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, f.mouse.Count("click"))
	assert.Equal(t, []string{"move 40,40", "move 40,40", "down left", "up left"}, f.mouse.Events())
	assert.Equal(t, []entity.FailureType{entity.FailureClickFailed}, f.metrics.Retries)
	assert.Equal(t, []bool{true}, f.metrics.Outcomes)
	assert.Len(t, f.uc.History(0), 2)
}

func newRetryingUseCase(cfg Config, mouse *testutil.FakeInput, m *testutil.RecordingMetrics) *UseCase {
	log := logger.NewNop()
	sleeper := &testutil.Sleeper{}
	screen := capture.New(testutil.NewFakeScreen(testutil.Blank(800, 600)), log, 0)
	coord := retry.New(retry.Config{MaxRetries: 5}, retry.NewStatsStore(), sleeper, rand.New(rand.NewSource(1)), log, m)
	return New(cfg, screen, mouse, testutil.NewFakeWindows(), coord, sleeper, rand.New(rand.NewSource(2)), log, m)
}

func TestExecuteSequenceWithRetry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HumanMovement = false

	t.Run("retunes ceiling after a clean run", func(t *testing.T) {
		mouse := testutil.NewFakeInput()
		mouse.Fail["click"] = errors.New("missed")
		mouse.FailTimes["click"] = 1
		m := &testutil.RecordingMetrics{}
		uc := newRetryingUseCase(cfg, mouse, m)
		reqs := []entity.ActionRequest{act(entity.ActionClick, entity.ActionParams{X: 10, Y: 10})}
		for i := 0; i < 9; i++ {
			reqs = append(reqs, act(entity.ActionKeyPress, entity.ActionParams{Key: "tab"}))
		}

		results := uc.ExecuteSequenceWithRetry(context.Background(), reqs)

		require.Len(t, results, 10)
		for _, r := range results {
			assert.True(t, r.Success, r.Message)
		}
		assert.Equal(t, []entity.FailureType{entity.FailureClickFailed}, m.Retries)
		assert.Equal(t, 4, uc.retry.Statistics().MaxRetries)
	})

	t.Run("too few operations keep the ceiling", func(t *testing.T) {
		c := cfg
		c.StopOnFailure = true
		uc := newRetryingUseCase(c, testutil.NewFakeInput(), &testutil.RecordingMetrics{})
		reqs := []entity.ActionRequest{
			act(entity.ActionClick, entity.ActionParams{X: -1, Y: 1}),
			act(entity.ActionKeyPress, entity.ActionParams{Key: "enter"}),
		}

		results := uc.ExecuteSequenceWithRetry(context.Background(), reqs)

		require.Len(t, results, 1)
		assert.False(t, results[0].Success)
		assert.Equal(t, 5, uc.retry.Statistics().MaxRetries)
	})
}
