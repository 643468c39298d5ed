package testutil

import (
	"context"
	"sync"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var (
	_ output.MetricsPort = (*RecordingMetrics)(nil)
	_ output.Sleeper     = (*Sleeper)(nil)
)

type RecordingMetrics struct {
	mu       sync.Mutex
	OCR      []string
	Retries  []entity.FailureType
	Waits    []time.Duration
	Outcomes []bool
	Actions  []entity.ActionType
}

func (m *RecordingMetrics) ObserveOCR(engine string, ok bool, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OCR = append(m.OCR, engine)
}

func (m *RecordingMetrics) ObserveRetry(op string, failure entity.FailureType, wait time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Retries = append(m.Retries, failure)
	m.Waits = append(m.Waits, wait)
}

func (m *RecordingMetrics) ObserveRetryOutcome(op string, ok bool, attempts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, ok)
}

func (m *RecordingMetrics) ObserveAction(action entity.ActionType, ok bool, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, action)
}

func (m *RecordingMetrics) ObserveCandidates(kind string, n int) {}

// Sleeper records requested waits without sleeping. It honours cancellation.
type Sleeper struct {
	mu    sync.Mutex
	Waits []time.Duration
}

func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Waits = append(s.Waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *Sleeper) Recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.Waits...)
}
