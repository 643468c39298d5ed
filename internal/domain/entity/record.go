package entity

import (
	"time"

	"github.com/google/uuid"
)

type OperationRecord struct {
	ID        string        `json:"id"`
	Type      ActionType    `json:"type"`
	Params    ActionParams  `json:"params"`
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewOperationRecord(req ActionRequest, res ActionResult, d time.Duration, at time.Time) OperationRecord {
	return OperationRecord{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Params:    req.Params,
		Success:   res.Success,
		Message:   res.Message,
		Duration:  d,
		Timestamp: at,
	}
}
