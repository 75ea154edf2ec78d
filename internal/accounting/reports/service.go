package reports

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service generates financial reports from committed ledger state. All
// operations are read-only and side-effect-free.
type Service struct {
	repo  ReadModel
	cache *Cache
	group singleflight.Group
}

func NewService(repo ReadModel, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

const dateKey = "2006-01-02"

// TrialBalance computes account balances as of a date.
func (s *Service) TrialBalance(ctx context.Context, asOf time.Time) (TrialBalance, error) {
	var tb TrialBalance
	err := s.cached(ctx, []string{"reports", "tb", asOf.Format(dateKey)}, &tb, func(ctx context.Context) (interface{}, error) {
		activity, err := s.repo.AccountActivity(ctx, time.Time{}, asOf)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(asOf, activity), nil
	})
	return tb, err
}

// BalanceSheet reports financial position as of a date.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	var bs BalanceSheet
	err := s.cached(ctx, []string{"reports", "bs", asOf.Format(dateKey)}, &bs, func(ctx context.Context) (interface{}, error) {
		activity, err := s.repo.AccountActivity(ctx, time.Time{}, asOf)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(asOf, activity), nil
	})
	return bs, err
}

// IncomeStatement reports revenue and expense over a period.
func (s *Service) IncomeStatement(ctx context.Context, start, end time.Time) (IncomeStatement, error) {
	var is IncomeStatement
	err := s.cached(ctx, []string{"reports", "is", start.Format(dateKey), end.Format(dateKey)}, &is, func(ctx context.Context) (interface{}, error) {
		activity, err := s.repo.AccountActivity(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return BuildIncomeStatement(start, end, activity), nil
	})
	return is, err
}

// CashFlowStatement reports cash movement over a period.
func (s *Service) CashFlowStatement(ctx context.Context, start, end time.Time) (CashFlowStatement, error) {
	var cf CashFlowStatement
	err := s.cached(ctx, []string{"reports", "cf", start.Format(dateKey), end.Format(dateKey)}, &cf, func(ctx context.Context) (interface{}, error) {
		activity, err := s.repo.AccountActivity(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return BuildCashFlowStatement(start, end, activity), nil
	})
	return cf, err
}

// PeriodBalances returns every account's directed balance over a period.
// The closing-entry builder, budget engine, and forecaster read through
// this.
func (s *Service) PeriodBalances(ctx context.Context, start, end time.Time) ([]AccountPeriodBalance, error) {
	activity, err := s.repo.AccountActivity(ctx, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]AccountPeriodBalance, 0, len(activity))
	for _, act := range activity {
		out = append(out, AccountPeriodBalance{Account: act.Account, Balance: act.Directed()})
	}
	return out, nil
}

// MonthlyActivity returns directed balances per month for one year.
func (s *Service) MonthlyActivity(ctx context.Context, year int) ([]AccountMonthlyActivity, error) {
	return s.repo.MonthlyActivity(ctx, year)
}

// cached wraps a loader with the redis cache and collapses concurrent
// builds of the same key.
func (s *Service) cached(ctx context.Context, keyParts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return err
	}
	ch := s.group.DoChan(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}
