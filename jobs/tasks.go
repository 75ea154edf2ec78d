package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aurum-erp/aurum-erp/internal/accounting/entries"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrityScan re-verifies cached account balances against
	// entry history.
	TaskLedgerIntegrityScan = "ledger:integrity_scan"
	// TaskRecurringRun posts the occurrences of a recurring entry template.
	TaskRecurringRun = "entries:recurring_run"
	// TaskReportsWarmup pre-builds the standard reports into the cache.
	TaskReportsWarmup = "reports:warmup"
)

// IntegrityScanPayload configures a balance-cache verification pass.
type IntegrityScanPayload struct {
	Tolerance float64 `json:"tolerance"`
}

// NewIntegrityScanTask constructs an Asynq task.
func NewIntegrityScanTask(tolerance float64) (*asynq.Task, error) {
	data, err := json.Marshal(IntegrityScanPayload{Tolerance: tolerance})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrityScan, data), nil
}

// NewRecurringRunTask constructs an Asynq task from a recurring template.
func NewRecurringRunTask(input entries.RecurringEntryInput) (*asynq.Task, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecurringRun, data), nil
}

// ReportsWarmupPayload configures a cache warmup pass.
type ReportsWarmupPayload struct {
	AsOf time.Time `json:"as_of"`
}

// NewReportsWarmupTask constructs an Asynq task.
func NewReportsWarmupTask(asOf time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
