package ocr

import (
	"sync"
	"time"

	"desktop-agent/internal/domain/entity"
)

// StatsStore keeps per-engine counters for the lifetime of the process.
type StatsStore struct {
	mu    sync.Mutex
	stats map[string]entity.EngineStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[string]entity.EngineStats)}
}

// Record folds one attempt into the engine's running average latency.
func (s *StatsStore) Record(engine string, ok bool, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats[engine]
	st.Attempts++
	if ok {
		st.Successes++
	}
	if st.Attempts == 1 {
		st.AvgLatency = d
	} else {
		n := time.Duration(st.Attempts)
		st.AvgLatency = (st.AvgLatency*(n-1) + d) / n
	}
	s.stats[engine] = st
}

func (s *StatsStore) Get(engine string) entity.EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[engine]
}

func (s *StatsStore) Snapshot() map[string]entity.EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]entity.EngineStats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

func (s *StatsStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = make(map[string]entity.EngineStats)
}
