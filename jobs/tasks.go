package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrityScan recomputes the trial balance and flags drift.
	TaskLedgerIntegrityScan = "ledger:integrity_scan"
)

// IntegrityScanPayload bounds the scan window. A zero From scans from
// inception; a zero To means "through today".
type IntegrityScanPayload struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewIntegrityScanTask constructs an Asynq task.
func NewIntegrityScanTask(payload IntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrityScan, data), nil
}
