package retry

import (
	"math/rand"
	"testing"
	"time"

	"desktop-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestElementSearch(t *testing.T) {
	p := entity.RetryParams{SearchTolerance: 0.55, SearchAreaExpansion: 1.4}
	patched := p.Apply(elementSearch(p, 3, nil))

	assert.InDelta(t, 0.5, patched.SearchTolerance, 1e-9)
	assert.Equal(t, entity.SearchFuzzyMatch, patched.DetectionMethod)
	assert.InDelta(t, 1.6, patched.SearchAreaExpansion, 1e-9)
	assert.Equal(t, "up", patched.ScrollDirection)

	late := p.Apply(elementSearch(p, 6, nil))
	assert.Empty(t, late.DetectionMethod)
	assert.Equal(t, "down", late.ScrollDirection)
}

func TestElementSearch_RelaxesFromDefaultTolerance(t *testing.T) {
	p := entity.RetryParams{}
	var tolerances []float64
	for attempt := 0; attempt < 4; attempt++ {
		p = p.Apply(elementSearch(p, attempt, nil))
		tolerances = append(tolerances, p.SearchTolerance)
	}

	assert.Less(t, tolerances[0], entity.DefaultSearchTolerance)
	assert.InDeltaSlice(t, []float64{0.6, 0.5, 0.5, 0.5}, tolerances, 1e-9)
}

func TestClickRetry(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	first := entity.RetryParams{}.Apply(clickRetry(entity.RetryParams{}, 0, rng))
	assert.Equal(t, entity.Point{}, first.ClickOffset)
	assert.Equal(t, entity.ClickSingle, first.ClickMethod)
	assert.Equal(t, 500*time.Millisecond, first.PreClickWait)
	assert.Equal(t, 100*time.Millisecond, first.ClickHold)

	for attempt := 1; attempt < 50; attempt++ {
		p := entity.RetryParams{}.Apply(clickRetry(entity.RetryParams{}, attempt, rng))
		assert.LessOrEqual(t, abs(p.ClickOffset.X), maxClickOffset)
		assert.LessOrEqual(t, abs(p.ClickOffset.Y), maxClickOffset)
	}

	third := entity.RetryParams{}.Apply(clickRetry(entity.RetryParams{}, 2, rng))
	assert.Equal(t, entity.ClickRight, third.ClickMethod)
	assert.Equal(t, 900*time.Millisecond, third.PreClickWait)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestInputRetry(t *testing.T) {
	p := entity.RetryParams{}
	var methods []entity.InputMethod
	for i := 0; i < 4; i++ {
		p = p.Apply(inputRetry(p, i, nil))
		methods = append(methods, p.InputMethod)
	}
	assert.Equal(t, []entity.InputMethod{entity.InputPaste, entity.InputSendKeys, entity.InputType, entity.InputPaste}, methods)
	assert.True(t, p.ClearBeforeInput)
	assert.True(t, p.Refocus)
	assert.Equal(t, 506250*time.Microsecond, p.InputDelay)

	slow := entity.RetryParams{InputDelay: 900 * time.Millisecond}
	assert.Equal(t, time.Second, slow.Apply(inputRetry(slow, 0, nil)).InputDelay)

	odd := entity.RetryParams{InputMethod: "dictate"}
	assert.Equal(t, entity.InputType, odd.Apply(inputRetry(odd, 0, nil)).InputMethod)
}

func TestOCRRetry(t *testing.T) {
	s := ocrRetry([]string{"vision", "tesseract"})
	p := entity.RetryParams{}
	var engines []string
	var preprocess []entity.PreprocessMethod
	for i := 0; i < 7; i++ {
		p = p.Apply(s(p, i, nil))
		engines = append(engines, p.OCREngine)
		preprocess = append(preprocess, p.Preprocess)
	}
	assert.Equal(t, []string{"vision", "tesseract", "tesseract", "tesseract", "tesseract", "tesseract", "tesseract"}, engines)
	assert.Equal(t, entity.PreprocessMethods, preprocess[:5])
	assert.InDelta(t, 1.6, p.OCRRegionExpansion, 1e-9)
	assert.InDelta(t, 0.3, p.ConfidenceThreshold, 1e-9)
}

func TestWaitingStrategies(t *testing.T) {
	p := entity.RetryParams{}
	p = p.Apply(longerWait(p, 0, nil))
	p = p.Apply(longerWait(p, 1, nil))
	assert.Equal(t, 40*time.Second, p.OperationTimeout)
	assert.Equal(t, 8*time.Second, p.ElementWait)

	p = p.Apply(networkRetry(p, 0, nil))
	p = p.Apply(networkRetry(p, 1, nil))
	assert.Equal(t, 15*time.Second, p.ConnectionTimeout)
	assert.True(t, p.Reconnect)

	p = p.Apply(permissionRetry(p, 0, nil))
	assert.True(t, p.ElevatedPrivileges)
	assert.True(t, p.AlternativeMethod)

	p = p.Apply(genericRetry(p, 0, nil))
	p = p.Apply(genericRetry(p, 1, nil))
	assert.Equal(t, 1500*time.Millisecond, p.GenericWait)
	assert.True(t, p.VerboseLogging)
}

func TestDefaultStrategiesCoverEveryFailure(t *testing.T) {
	s := DefaultStrategies(nil)
	for _, f := range entity.FailureTypes {
		assert.Contains(t, s, f)
	}
}
