package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
)

// IntegrityScanJob re-derives every cached account balance from entry
// history and reports drift. A mismatch means a balance cache was written
// outside the entry's atomic unit, which should be unreachable.
type IntegrityScanJob struct {
	repo   ledger.Repository
	logger *slog.Logger
}

func NewIntegrityScanJob(repo ledger.Repository, logger *slog.Logger) *IntegrityScanJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityScanJob{repo: repo, logger: logger}
}

// Handle processes TaskLedgerIntegrityScan tasks.
func (j *IntegrityScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tolerance := payload.Tolerance
	if tolerance <= 0 {
		tolerance = ledger.BalanceTolerance
	}

	cached, err := j.repo.ListBalances(ctx)
	if err != nil {
		return err
	}
	var drifted int
	for _, bal := range cached {
		entries, err := j.repo.EntriesForAccount(ctx, bal.AccountID, time.Now())
		if err != nil {
			return err
		}
		var debit, credit float64
		for _, e := range entries {
			debit += e.Debit
			credit += e.Credit
		}
		if math.Abs(debit-bal.Debit) > tolerance || math.Abs(credit-bal.Credit) > tolerance {
			drifted++
			j.logger.Error("balance cache drift",
				slog.Int64("account_id", bal.AccountID),
				slog.Float64("cached_debit", bal.Debit),
				slog.Float64("derived_debit", debit),
				slog.Float64("cached_credit", bal.Credit),
				slog.Float64("derived_credit", credit))
		}
	}
	if drifted > 0 {
		return fmt.Errorf("jobs: integrity scan found %d drifted balances", drifted)
	}
	j.logger.Info("integrity scan clean", slog.Int("accounts", len(cached)))
	return nil
}
