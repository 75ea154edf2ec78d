package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
)

// ReportsWarmupJob pre-builds the standard reports so the first reader
// after a cache bump does not pay the build cost.
type ReportsWarmupJob struct {
	service *reports.Service
	logger  *slog.Logger
}

func NewReportsWarmupJob(service *reports.Service, logger *slog.Logger) *ReportsWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsWarmupJob{service: service, logger: logger}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	periodStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())

	if _, err := j.service.TrialBalance(ctx, asOf); err != nil {
		return err
	}
	if _, err := j.service.BalanceSheet(ctx, asOf); err != nil {
		return err
	}
	if _, err := j.service.IncomeStatement(ctx, periodStart, asOf); err != nil {
		return err
	}
	if _, err := j.service.CashFlowStatement(ctx, periodStart, asOf); err != nil {
		return err
	}
	j.logger.Info("report cache warmed", slog.Time("as_of", asOf))
	return nil
}
