package input

import (
	"context"
	"time"

	"desktop-agent/internal/domain/entity"
)

// RetryOperation is one attempt of a retried call. It reads the current
// parameters and reports failure through the result, never by panicking.
type RetryOperation func(ctx context.Context, params entity.RetryParams) entity.ActionResult

type RetryStatistics struct {
	Operations map[string]entity.OperationStats `json:"operations"`
	MaxRetries int                              `json:"max_retries"`
	BaseWait   time.Duration                    `json:"base_wait"`
	MaxWait    time.Duration                    `json:"max_wait"`
}

type RetryCoordinator interface {
	Execute(ctx context.Context, rc *entity.RetryContext, op RetryOperation) entity.ActionResult
	OptimizeRetryParameters() int
	Statistics() RetryStatistics
}
