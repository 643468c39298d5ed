package metrics

import (
	"testing"
	"time"

	"desktop-agent/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("desktop_agent", reg)

	c.ObserveOCR("tesseract", true, 200*time.Millisecond)
	c.ObserveOCR("tesseract", false, time.Second)
	c.ObserveOCR("vision", true, time.Second)
	c.ObserveRetry("click", entity.FailureClickFailed, 600*time.Millisecond)
	c.ObserveRetryOutcome("click", true, 2)
	c.ObserveAction(entity.ActionClick, true, 10*time.Millisecond)
	c.ObserveAction(entity.ActionClick, false, 10*time.Millisecond)
	c.ObserveCandidates("button", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ocrAttempts.WithLabelValues("tesseract", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ocrAttempts.WithLabelValues("tesseract", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.retryAttempts.WithLabelValues("click", "click_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.retryOutcomes.WithLabelValues("click", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.actionsTotal.WithLabelValues("click", "failure")))

	n, err := testutil.GatherAndCount(reg, "desktop_agent_ocr_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCollector_NilRegistererDoesNotPanic(t *testing.T) {
	c := NewCollector("x", nil)
	assert.NotPanics(t, func() {
		c.ObserveCandidates("icon", 0)
	})
}

func TestNop(t *testing.T) {
	var n Nop
	assert.NotPanics(t, func() {
		n.ObserveOCR("a", true, 0)
		n.ObserveRetry("a", entity.FailureUnknown, 0)
		n.ObserveRetryOutcome("a", false, 1)
		n.ObserveAction(entity.ActionWait, true, 0)
		n.ObserveCandidates("a", 1)
	})
}
