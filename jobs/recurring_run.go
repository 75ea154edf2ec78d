package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/aurum-erp/aurum-erp/internal/accounting/entries"
)

// RecurringRunJob posts the occurrences of a recurring entry template in
// the background. Occurrence failures are already isolated by the entry
// builder; the job only fails on range or frequency errors.
type RecurringRunJob struct {
	service *entries.Service
	logger  *slog.Logger
}

func NewRecurringRunJob(service *entries.Service, logger *slog.Logger) *RecurringRunJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecurringRunJob{service: service, logger: logger}
}

// Handle processes TaskRecurringRun tasks.
func (j *RecurringRunJob) Handle(ctx context.Context, t *asynq.Task) error {
	var input entries.RecurringEntryInput
	if err := json.Unmarshal(t.Payload(), &input); err != nil {
		return asynq.SkipRetry
	}
	result, err := j.service.PostRecurring(ctx, input)
	if err != nil {
		return err
	}
	failed := result.Failed()
	j.logger.Info("recurring run finished",
		slog.String("reference", input.Template.ReferenceNumber),
		slog.Int("occurrences", len(result.Occurrences)),
		slog.Int("failed", len(failed)))
	return nil
}
