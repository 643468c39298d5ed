package executor

import (
	"sync"

	"desktop-agent/internal/domain/entity"
)

const (
	historyCap  = 1000
	historyKeep = 500
)

// history drops the oldest half once it grows past historyCap.
type history struct {
	mu      sync.Mutex
	records []entity.OperationRecord
}

func (h *history) append(r entity.OperationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	if len(h.records) > historyCap {
		h.records = append([]entity.OperationRecord(nil), h.records[len(h.records)-historyKeep:]...)
	}
}

func (h *history) last(limit int) []entity.OperationRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := 0
	if limit > 0 && limit < len(h.records) {
		start = len(h.records) - limit
	}
	return append([]entity.OperationRecord(nil), h.records[start:]...)
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func (h *history) clear() {
	h.mu.Lock()
	h.records = nil
	h.mu.Unlock()
}
