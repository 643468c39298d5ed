// Package metrics exports automation counters and latencies to Prometheus.
package metrics

import (
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ output.MetricsPort = (*Collector)(nil)

type Collector struct {
	ocrAttempts *prometheus.CounterVec
	ocrDuration *prometheus.HistogramVec

	retryAttempts *prometheus.CounterVec
	retryBackoff  *prometheus.HistogramVec
	retryOutcomes *prometheus.CounterVec
	retryTries    *prometheus.HistogramVec

	actionsTotal   *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec

	candidates *prometheus.HistogramVec
}

// NewCollector registers every metric on reg. A nil reg keeps the metrics
// unregistered.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		ocrAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ocr_attempts_total",
				Help:      "OCR engine invocations by outcome",
			},
			[]string{"engine", "status"},
		),
		ocrDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ocr_duration_seconds",
				Help:      "OCR engine latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"engine"},
		),
		retryAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_attempts_total",
				Help:      "Failed attempts that were retried, by failure type",
			},
			[]string{"operation", "failure"},
		),
		retryBackoff: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retry_backoff_seconds",
				Help:      "Backoff waits between attempts",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
			},
			[]string{"failure"},
		),
		retryOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_operations_total",
				Help:      "Retry-wrapped operations by final outcome",
			},
			[]string{"operation", "status"},
		),
		retryTries: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retry_attempts_per_operation",
				Help:      "Attempts consumed per retry-wrapped operation",
				Buckets:   prometheus.LinearBuckets(1, 1, 9),
			},
			[]string{"operation"},
		),
		actionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Executed actions by type and outcome",
			},
			[]string{"type", "status"},
		),
		actionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "action_duration_seconds",
				Help:      "Action latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		candidates: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "locator_candidates",
				Help:      "Candidates returned per locator query",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
			},
			[]string{"kind"},
		),
	}
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (c *Collector) ObserveOCR(engine string, ok bool, d time.Duration) {
	c.ocrAttempts.WithLabelValues(engine, status(ok)).Inc()
	c.ocrDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func (c *Collector) ObserveRetry(op string, failure entity.FailureType, wait time.Duration) {
	c.retryAttempts.WithLabelValues(op, failure.String()).Inc()
	c.retryBackoff.WithLabelValues(failure.String()).Observe(wait.Seconds())
}

func (c *Collector) ObserveRetryOutcome(op string, ok bool, attempts int) {
	c.retryOutcomes.WithLabelValues(op, status(ok)).Inc()
	c.retryTries.WithLabelValues(op).Observe(float64(attempts))
}

func (c *Collector) ObserveAction(action entity.ActionType, ok bool, d time.Duration) {
	c.actionsTotal.WithLabelValues(action.String(), status(ok)).Inc()
	c.actionDuration.WithLabelValues(action.String()).Observe(d.Seconds())
}

func (c *Collector) ObserveCandidates(kind string, n int) {
	c.candidates.WithLabelValues(kind).Observe(float64(n))
}

// Nop discards every observation.
type Nop struct{}

var _ output.MetricsPort = Nop{}

func NewNop() Nop { return Nop{} }

func (Nop) ObserveOCR(string, bool, time.Duration)                 {}
func (Nop) ObserveRetry(string, entity.FailureType, time.Duration) {}
func (Nop) ObserveRetryOutcome(string, bool, int)                  {}
func (Nop) ObserveAction(entity.ActionType, bool, time.Duration)   {}
func (Nop) ObserveCandidates(string, int)                          {}
