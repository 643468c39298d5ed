// Package retry re-runs failed operations with failure-specific parameter
// mutations and jittered exponential backoff.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"desktop-agent/internal/application/port/input"
	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var _ input.RetryCoordinator = (*Coordinator)(nil)

const (
	DefaultMaxRetries = 5
	MinMaxRetries     = 3
	MaxMaxRetries     = 8

	optimizeMinOps  = 10
	lowSuccessRate  = 0.7
	highSuccessRate = 0.95
	jitterLow       = 0.8
	jitterSpan      = 0.4
)

type Config struct {
	MaxRetries int
	BaseWait   time.Duration
	MaxWait    time.Duration
	// OCREngines is the rotation used by the OCR failure strategy.
	OCREngines []string
}

func (c Config) withDefaults() Config {
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseWait <= 0 {
		c.BaseWait = DefaultBaseWait
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultMaxWait
	}
	return c
}

type Coordinator struct {
	mu         sync.Mutex
	maxRetries int
	cfg        Config
	strategies map[entity.FailureType]Strategy
	stats      *StatsStore
	sleeper    output.Sleeper
	rng        *rand.Rand
	logger     output.LoggerPort
	metrics    output.MetricsPort
}

// New panics when cfg.MaxRetries is outside [MinMaxRetries, MaxMaxRetries].
func New(
	cfg Config,
	stats *StatsStore,
	sleeper output.Sleeper,
	rng *rand.Rand,
	logger output.LoggerPort,
	metrics output.MetricsPort,
) *Coordinator {
	cfg = cfg.withDefaults()
	if cfg.MaxRetries < MinMaxRetries || cfg.MaxRetries > MaxMaxRetries {
		panic(fmt.Sprintf("retry: max retries %d outside [%d,%d]", cfg.MaxRetries, MinMaxRetries, MaxMaxRetries))
	}
	return &Coordinator{
		maxRetries: cfg.MaxRetries,
		cfg:        cfg,
		strategies: DefaultStrategies(cfg.OCREngines),
		stats:      stats,
		sleeper:    sleeper,
		rng:        rng,
		logger:     logger,
		metrics:    metrics,
	}
}

func (c *Coordinator) MaxRetries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxRetries
}

// Classify prefers the result's explicit failure tag and falls back to the
// message patterns.
func Classify(res entity.ActionResult) entity.FailureType {
	if res.Failure != entity.FailureNone {
		return res.Failure
	}
	return entity.ClassifyMessage(res.Message)
}

// Execute runs op until it succeeds or max retries + 1 attempts have failed.
// Cancellation is observed during backoff only; the last failed result is
// returned with its classified failure.
func (c *Coordinator) Execute(ctx context.Context, rc *entity.RetryContext, op input.RetryOperation) entity.ActionResult {
	maxRetries := c.MaxRetries()
	log := c.logger.WithFields(map[string]any{"op": rc.Op, "target": rc.Target})
	log.Debug("Starting retried operation", "max_retries", maxRetries)

	var last entity.ActionResult
	for attempt := 0; attempt <= maxRetries; attempt++ {
		rc.Attempts++
		res := op(ctx, rc.Params)
		if res.Success {
			log.Info("Operation succeeded", "attempts", rc.Attempts)
			c.stats.RecordSuccess(rc.Op, attempt)
			c.metrics.ObserveRetryOutcome(rc.Op, true, rc.Attempts)
			return res
		}

		failure := Classify(res)
		res.Failure = failure
		last = res
		rc.Failures = append(rc.Failures, failure)

		if attempt == maxRetries {
			break
		}

		c.mu.Lock()
		patch := c.strategy(failure)(rc.Params, attempt, c.rng)
		c.mu.Unlock()
		rc.Params = rc.Params.Apply(patch)
		wait := c.backoff(attempt, failure)
		c.metrics.ObserveRetry(rc.Op, failure, wait)
		log.Warn("Attempt failed, retrying",
			"attempt", attempt+1,
			"failure", failure,
			"message", res.Message,
			"wait", wait,
		)

		if err := c.sleeper.Sleep(ctx, wait); err != nil {
			log.Warn("Retry cancelled", "attempts", rc.Attempts, "error", err)
			c.metrics.ObserveRetryOutcome(rc.Op, false, rc.Attempts)
			return last
		}
	}

	log.Error("Retries exhausted", "attempts", rc.Attempts, "failure", last.Failure)
	c.stats.RecordFailure(rc.Op)
	c.metrics.ObserveRetryOutcome(rc.Op, false, rc.Attempts)
	return last
}

func (c *Coordinator) strategy(f entity.FailureType) Strategy {
	if s, ok := c.strategies[f]; ok {
		return s
	}
	return c.strategies[entity.FailureUnknown]
}

func (c *Coordinator) backoff(attempt int, failure entity.FailureType) time.Duration {
	c.mu.Lock()
	jitter := jitterLow + jitterSpan*c.rng.Float64()
	c.mu.Unlock()
	return Backoff(c.cfg.BaseWait, c.cfg.MaxWait, attempt, failure, jitter)
}

// OptimizeRetryParameters adjusts the retry ceiling from the recorded
// success rate once enough operations have been seen, and returns it.
func (c *Coordinator) OptimizeRetryParameters() int {
	total, successes := c.stats.Totals()

	c.mu.Lock()
	defer c.mu.Unlock()
	if total < optimizeMinOps {
		c.logger.Debug("Not enough data to tune retries", "operations", total)
		return c.maxRetries
	}

	rate := float64(successes) / float64(total)
	switch {
	case rate < lowSuccessRate:
		c.maxRetries = min(c.maxRetries+1, MaxMaxRetries)
	case rate > highSuccessRate:
		c.maxRetries = max(c.maxRetries-1, MinMaxRetries)
	}
	c.logger.Info("Retry ceiling tuned", "success_rate", rate, "max_retries", c.maxRetries)
	return c.maxRetries
}

func (c *Coordinator) Statistics() input.RetryStatistics {
	return input.RetryStatistics{
		Operations: c.stats.Snapshot(),
		MaxRetries: c.MaxRetries(),
		BaseWait:   c.cfg.BaseWait,
		MaxWait:    c.cfg.MaxWait,
	}
}
