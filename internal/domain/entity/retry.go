package entity

// RetryContext tracks one top-level retried invocation. The coordinator
// patches Params between attempts and appends every classified failure.
type RetryContext struct {
	Op       string
	Target   string
	Params   RetryParams
	Attempts int
	Failures []FailureType
}

func NewRetryContext(op, target string, params RetryParams) *RetryContext {
	return &RetryContext{Op: op, Target: target, Params: params}
}

// LastFailure is the most recent classified failure, or FailureNone.
func (c *RetryContext) LastFailure() FailureType {
	if len(c.Failures) == 0 {
		return FailureNone
	}
	return c.Failures[len(c.Failures)-1]
}

// OperationStats aggregates retried invocations of one operation type.
type OperationStats struct {
	Total        int     `json:"total"`
	Successes    int     `json:"successes"`
	Failures     int     `json:"failures"`
	TotalRetries int     `json:"total_retries"`
	AvgRetries   float64 `json:"avg_retries"`
}

func (s OperationStats) SuccessRate() float64 {
	if s.Total <= 0 {
		return 0
	}
	return ClampUnit(float64(s.Successes) / float64(s.Total))
}
