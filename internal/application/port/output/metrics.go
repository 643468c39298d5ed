package output

import (
	"time"

	"desktop-agent/internal/domain/entity"
)

type MetricsPort interface {
	ObserveOCR(engine string, ok bool, d time.Duration)
	ObserveRetry(op string, failure entity.FailureType, wait time.Duration)
	ObserveRetryOutcome(op string, ok bool, attempts int)
	ObserveAction(action entity.ActionType, ok bool, d time.Duration)
	ObserveCandidates(kind string, n int)
}
