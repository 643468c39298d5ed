package perception

import (
	"context"
	"image"
	"math/rand"
	"sync"
	"testing"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"
	"desktop-agent/internal/infrastructure/metrics"
	"desktop-agent/internal/testutil"
	"desktop-agent/internal/usecase/capture"
	"desktop-agent/internal/usecase/executor"
	"desktop-agent/internal/usecase/locator"
	"desktop-agent/internal/usecase/ocr"
	"desktop-agent/internal/usecase/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appearingOCR boxes nothing until it has been asked hiddenFor times.
type appearingOCR struct {
	hiddenFor int
	blocks    []entity.RecognizedText

	mu    sync.Mutex
	calls int
}

func (a *appearingOCR) Name() string { return "tesseract" }

func (a *appearingOCR) Extract(ctx context.Context, img image.Image) (string, error) {
	return "", nil
}

func (a *appearingOCR) Locate(ctx context.Context, img image.Image) ([]entity.RecognizedText, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.calls <= a.hiddenFor {
		return nil, nil
	}
	return a.blocks, nil
}

// clockSleeper advances a fake clock instead of sleeping.
type clockSleeper struct {
	mu    sync.Mutex
	now   time.Time
	waits int
}

func (c *clockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.waits++
	return ctx.Err()
}

func (c *clockSleeper) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type fixture struct {
	uc     *UseCase
	screen *testutil.FakeScreen
	mouse  *testutil.FakeInput
	clock  *clockSleeper
}

func newFixture(t *testing.T, engine output.OCRBackend) fixture {
	t.Helper()
	log := logger.NewNop()
	m := metrics.NewNop()

	f := fixture{
		screen: testutil.NewFakeScreen(testutil.Blank(800, 600)),
		mouse:  testutil.NewFakeInput(),
		clock:  &clockSleeper{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	source := capture.New(f.screen, log, 0)
	cascade := ocr.NewCascade([]output.OCRBackend{engine}, ocr.NewStatsStore(), log, m, ocr.Config{})
	coord := retry.New(retry.Config{MaxRetries: 3}, retry.NewStatsStore(), &testutil.Sleeper{}, rand.New(rand.NewSource(1)), log, m)

	cfg := executor.DefaultConfig()
	cfg.HumanMovement = false
	actions := executor.New(cfg, source, f.mouse, testutil.NewFakeWindows(), coord, &testutil.Sleeper{}, rand.New(rand.NewSource(2)), log, m)

	f.uc = New(source, locator.New(cascade, log, m), cascade, actions, coord, f.clock, log)
	f.uc.now = f.clock.Now
	return f
}

func okButton() []entity.RecognizedText {
	return []entity.RecognizedText{{Text: "OK", Box: entity.NewRect(100, 100, 40, 20), Confidence: 0.9}}
}

func TestFindAndClick(t *testing.T) {
	f := newFixture(t, &testutil.FakeOCR{EngineName: "tesseract", Blocks: okButton()})

	res := f.uc.FindAndClick(context.Background(), "OK button")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"move 120,110", "click left x1"}, f.mouse.Events())
	assert.Equal(t, "OK button", res.Data["description"])
	assert.Equal(t, 1, f.screen.Captures())
}

func TestFindAndClick_FoundOnRetry(t *testing.T) {
	f := newFixture(t, &appearingOCR{hiddenFor: 1, blocks: okButton()})

	res := f.uc.FindAndClick(context.Background(), "OK button")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"move 120,110", "click left x1"}, f.mouse.Events())
	assert.Equal(t, 2, f.screen.Captures(), "retry forces a new capture")
}

func TestFindAndClick_NotFound(t *testing.T) {
	f := newFixture(t, &testutil.FakeOCR{EngineName: "tesseract", Blocks: okButton()})

	res := f.uc.FindAndClick(context.Background(), "Missing button")

	assert.False(t, res.Success)
	assert.Equal(t, entity.FailureElementNotFound, res.Failure)
	assert.Contains(t, res.Message, "not found")
	assert.Equal(t, 4, f.screen.Captures())
	assert.Equal(t, []string{"scroll 0,3"}, f.mouse.Events(), "the last attempt scrolls down first")
}

func TestWaitForElement(t *testing.T) {
	t.Run("appears", func(t *testing.T) {
		f := newFixture(t, &appearingOCR{hiddenFor: 3, blocks: okButton()})

		p, err := f.uc.WaitForElement(context.Background(), "OK button", 5*time.Second, 200*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, entity.Point{X: 120, Y: 110}, p)
		assert.Equal(t, 3, f.clock.waits)
		assert.Equal(t, 4, f.screen.Captures())
	})

	t.Run("times out", func(t *testing.T) {
		f := newFixture(t, &appearingOCR{hiddenFor: 1000})

		_, err := f.uc.WaitForElement(context.Background(), "OK button", 2*time.Second, 500*time.Millisecond)

		require.Error(t, err)
		assert.True(t, entity.IsCode(err, entity.ErrCodeTimeout))
		assert.Equal(t, 4, f.clock.waits)
		assert.Equal(t, 5, f.screen.Captures())
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newFixture(t, &appearingOCR{hiddenFor: 1000})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.uc.WaitForElement(ctx, "OK button", 0, 0)

		assert.True(t, entity.IsCode(err, entity.ErrCodeTimeout))
		assert.Equal(t, 1, f.clock.waits)
	})
}

func TestReadScreen(t *testing.T) {
	f := newFixture(t, &testutil.FakeOCR{EngineName: "tesseract", Texts: []string{"  Hello  "}})

	res, err := f.uc.ReadScreen(context.Background(), entity.PreprocessContrast)
	require.NoError(t, err)
	assert.Equal(t, "Hello", res.Text)
	assert.Equal(t, "tesseract", res.EngineUsed)

	f = newFixture(t, &testutil.FakeOCR{EngineName: "tesseract", Texts: []string{""}})
	_, err = f.uc.ReadScreen(context.Background(), entity.PreprocessNone)
	assert.True(t, entity.IsCode(err, entity.ErrCodeRecognitionFailed))
}

func TestSee(t *testing.T) {
	f := newFixture(t, &testutil.FakeOCR{EngineName: "tesseract"})
	ctx := context.Background()

	first, err := f.uc.See(ctx, false)
	require.NoError(t, err)
	_, err = f.uc.See(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.screen.Captures())

	forced, err := f.uc.See(ctx, true)
	require.NoError(t, err)
	assert.NotSame(t, first, forced)
	assert.Equal(t, 2, f.screen.Captures())
}
