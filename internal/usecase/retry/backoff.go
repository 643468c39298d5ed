package retry

import (
	"math"
	"time"

	"desktop-agent/internal/domain/entity"
)

const (
	DefaultBaseWait = time.Second
	DefaultMaxWait  = 30 * time.Second
)

var waitMultipliers = map[entity.FailureType]float64{
	entity.FailureElementNotFound:  0.5,
	entity.FailureClickFailed:      0.3,
	entity.FailureInputFailed:      1.0,
	entity.FailureOCRFailed:        1.0,
	entity.FailureTimeout:          2.0,
	entity.FailureNetworkError:     3.0,
	entity.FailurePermissionDenied: 1.5,
	entity.FailureUnknown:          1.0,
}

// Backoff is min(maxWait, base * 2^attempt * multiplier(failure) * jitter).
func Backoff(base, maxWait time.Duration, attempt int, failure entity.FailureType, jitter float64) time.Duration {
	mult, ok := waitMultipliers[failure]
	if !ok {
		mult = 1
	}
	wait := float64(base) * math.Pow(2, float64(attempt)) * mult * jitter
	if wait >= float64(maxWait) || math.IsInf(wait, 1) {
		return maxWait
	}
	return time.Duration(max(0, wait))
}
