package retry

import (
	"sync"

	"desktop-agent/internal/domain/entity"
)

// StatsStore keeps per-operation retry outcomes for the process lifetime.
type StatsStore struct {
	mu  sync.Mutex
	ops map[string]entity.OperationStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{ops: make(map[string]entity.OperationStats)}
}

// RecordSuccess counts a success reached after retries extra attempts.
func (s *StatsStore) RecordSuccess(op string, retries int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ops[op]
	st.Total++
	st.Successes++
	st.TotalRetries += retries
	st.AvgRetries = float64(st.TotalRetries) / float64(st.Successes)
	s.ops[op] = st
}

func (s *StatsStore) RecordFailure(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ops[op]
	st.Total++
	st.Failures++
	s.ops[op] = st
}

func (s *StatsStore) Get(op string) entity.OperationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops[op]
}

// Totals sums every operation type.
func (s *StatsStore) Totals() (total, successes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.ops {
		total += st.Total
		successes += st.Successes
	}
	return total, successes
}

func (s *StatsStore) Snapshot() map[string]entity.OperationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]entity.OperationStats, len(s.ops))
	for k, v := range s.ops {
		out[k] = v
	}
	return out
}
