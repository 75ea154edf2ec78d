package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
	"github.com/aurum-erp/aurum-erp/internal/shared"
)

// ActualsPort reads committed ledger state for variance and forecasting.
type ActualsPort interface {
	PeriodBalances(ctx context.Context, start, end time.Time) ([]reports.AccountPeriodBalance, error)
	MonthlyActivity(ctx context.Context, year int) ([]reports.AccountMonthlyActivity, error)
}

// AuditPort records budget events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns Budget and BudgetLine mutation. Reads of ledger actuals go
// through the reports layer; nothing here mutates the ledger.
type Service struct {
	repo    Repository
	actuals ActualsPort
	audit   AuditPort
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, actuals ActualsPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, actuals: actuals, audit: audit, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create opens a new draft budget with no lines.
func (s *Service) Create(ctx context.Context, input CreateBudgetInput) (Budget, error) {
	if err := input.Validate(); err != nil {
		return Budget{}, err
	}
	b := Budget{
		Name:           input.Name,
		BudgetYear:     input.BudgetYear,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         StatusDraft,
		Currency:       input.Currency,
		RevisionNumber: 1,
		CreatedBy:      input.ActorID,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertBudget(ctx, b)
		if err != nil {
			return err
		}
		b = inserted
		return nil
	})
	if err != nil {
		return Budget{}, err
	}
	s.record(ctx, input.ActorID, "budget.create", b.ID, map[string]any{"name": b.Name, "year": b.BudgetYear})
	return b, nil
}

// AddLine attaches a line to a draft budget. The total is always computed
// from the twelve monthly figures, never accepted from the caller.
func (s *Service) AddLine(ctx context.Context, budgetID int64, input LineInput) (BudgetLine, error) {
	if err := input.Validate(); err != nil {
		return BudgetLine{}, err
	}
	line := BudgetLine{
		BudgetID:     budgetID,
		AccountID:    input.AccountID,
		Category:     input.Category,
		Subcategory:  input.Subcategory,
		CostCenterID: input.CostCenterID,
		Department:   input.Department,
		Monthly:      input.Monthly,
		TotalBudget:  round2(input.Monthly.Total()),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		b, err := tx.GetBudget(ctx, budgetID)
		if err != nil {
			return err
		}
		if b.Status != StatusDraft {
			return ErrNotDraft
		}
		inserted, err := tx.InsertLine(ctx, line)
		if err != nil {
			return err
		}
		line = inserted
		return nil
	})
	if err != nil {
		return BudgetLine{}, err
	}
	s.record(ctx, input.ActorID, "budget.line.create", budgetID, map[string]any{"account_id": line.AccountID, "total": line.TotalBudget})
	return line, nil
}

// Approve moves a draft budget to approved.
func (s *Service) Approve(ctx context.Context, budgetID, actorID int64) (Budget, error) {
	var b Budget
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetBudget(ctx, budgetID)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return ErrNotDraft
		}
		if err := tx.SetApproval(ctx, budgetID, actorID, s.now()); err != nil {
			return err
		}
		b, err = tx.GetBudget(ctx, budgetID)
		return err
	})
	if err != nil {
		return Budget{}, err
	}
	s.record(ctx, actorID, "budget.approve", budgetID, nil)
	return b, nil
}

// Get loads a budget with its lines.
func (s *Service) Get(ctx context.Context, id int64) (Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

// ListByYear lists budgets for a year across the revision chain.
func (s *Service) ListByYear(ctx context.Context, year int) ([]Budget, error) {
	return s.repo.ListByYear(ctx, year)
}

// GenerateFromHistory builds a draft budget for the target year by scaling
// the base year's monthly actuals by the growth rate. Accounts with no base
// year activity get no line.
func (s *Service) GenerateFromHistory(ctx context.Context, input GenerateInput) (Budget, error) {
	if err := input.Validate(); err != nil {
		return Budget{}, err
	}
	activity, err := s.actuals.MonthlyActivity(ctx, input.BaseYear)
	if err != nil {
		return Budget{}, err
	}
	factor := 1 + input.GrowthPct/100

	var lines []BudgetLine
	for _, act := range activity {
		var monthly MonthlyAmounts
		var any bool
		for i, amount := range act.Months {
			if amount == 0 {
				continue
			}
			any = true
			monthly.Set(time.Month(i+1), round2(amount*factor))
		}
		if !any {
			continue
		}
		lines = append(lines, BudgetLine{
			AccountID:   act.Account.ID,
			Category:    string(act.Account.Type),
			Subcategory: string(act.Account.Subtype),
			Monthly:     monthly,
			TotalBudget: round2(monthly.Total()),
		})
	}
	if len(lines) == 0 {
		return Budget{}, fmt.Errorf("%w: %d", ErrNoHistory, input.BaseYear)
	}

	b := Budget{
		Name:           input.Name,
		BudgetYear:     input.TargetYear,
		StartDate:      time.Date(input.TargetYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(input.TargetYear, time.December, 31, 0, 0, 0, 0, time.UTC),
		Status:         StatusDraft,
		Currency:       input.Currency,
		RevisionNumber: 1,
		CreatedBy:      input.ActorID,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertBudget(ctx, b)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].BudgetID = inserted.ID
			line, err := tx.InsertLine(ctx, lines[i])
			if err != nil {
				return err
			}
			lines[i] = line
		}
		inserted.Lines = lines
		b = inserted
		return nil
	})
	if err != nil {
		return Budget{}, err
	}
	s.record(ctx, input.ActorID, "budget.generate", b.ID, map[string]any{
		"base_year": input.BaseYear, "target_year": input.TargetYear, "growth_pct": input.GrowthPct,
	})
	return b, nil
}

// VarianceAnalysis compares a budget's YTD plan against ledger actuals.
func (s *Service) VarianceAnalysis(ctx context.Context, budgetID int64, asOf time.Time) (VarianceReport, error) {
	b, err := s.repo.GetBudget(ctx, budgetID)
	if err != nil {
		return VarianceReport{}, err
	}
	actuals, err := s.actualsByAccount(ctx, b.StartDate, asOf)
	if err != nil {
		return VarianceReport{}, err
	}
	return ComputeVariance(b, actuals, asOf), nil
}

// Forecast extrapolates each line's full-year outcome from its YTD run rate.
func (s *Service) Forecast(ctx context.Context, budgetID int64, asOf time.Time) (ForecastReport, error) {
	b, err := s.repo.GetBudget(ctx, budgetID)
	if err != nil {
		return ForecastReport{}, err
	}
	actuals, err := s.actualsByAccount(ctx, b.StartDate, asOf)
	if err != nil {
		return ForecastReport{}, err
	}
	return ComputeForecast(b, actuals, asOf), nil
}

// CreateRevision clones a budget with selective monthly overrides, links the
// chain, and supersedes the original in the same atomic unit.
func (s *Service) CreateRevision(ctx context.Context, input RevisionInput) (Budget, error) {
	if err := input.Validate(); err != nil {
		return Budget{}, err
	}
	var revision Budget
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetBudget(ctx, input.BudgetID)
		if err != nil {
			return err
		}
		if original.Status == StatusSuperseded {
			return ErrAlreadySuperseded
		}
		parentID := original.ID
		revision = Budget{
			Name:           original.Name,
			BudgetYear:     original.BudgetYear,
			StartDate:      original.StartDate,
			EndDate:        original.EndDate,
			Status:         StatusDraft,
			Currency:       original.Currency,
			ParentBudgetID: &parentID,
			RevisionNumber: original.RevisionNumber + 1,
			Reason:         input.Reason,
			CreatedBy:      input.ActorID,
		}
		revision, err = tx.InsertBudget(ctx, revision)
		if err != nil {
			return err
		}
		for _, line := range original.Lines {
			clone := line
			clone.ID = 0
			clone.BudgetID = revision.ID
			for month, amount := range input.Overrides[line.AccountID] {
				clone.Monthly.Set(month, amount)
			}
			clone.TotalBudget = round2(clone.Monthly.Total())
			inserted, err := tx.InsertLine(ctx, clone)
			if err != nil {
				return err
			}
			revision.Lines = append(revision.Lines, inserted)
		}
		return tx.SetStatus(ctx, original.ID, StatusSuperseded)
	})
	if err != nil {
		return Budget{}, err
	}
	s.record(ctx, input.ActorID, "budget.revise", revision.ID, map[string]any{
		"parent_budget_id": input.BudgetID, "reason": input.Reason,
	})
	return revision, nil
}

// ApprovedMonthlyOperating returns the approved operating-expense plan for
// one month, reported found=false when no approved budget covers the year.
func (s *Service) ApprovedMonthlyOperating(ctx context.Context, year int, month time.Month) (float64, bool, error) {
	b, err := s.repo.ApprovedForYear(ctx, year)
	if err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	var total float64
	for _, line := range b.Lines {
		if line.AccountType != accounts.AccountTypeExpense {
			continue
		}
		total += line.Monthly.Amount(month)
	}
	return round2(total), true, nil
}

func (s *Service) actualsByAccount(ctx context.Context, start, end time.Time) (map[int64]float64, error) {
	balances, err := s.actuals.PeriodBalances(ctx, start, end)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]float64, len(balances))
	for _, b := range balances {
		out[b.Account.ID] = b.Balance
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, budgetID int64, details map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "budget",
		EntityID: fmt.Sprintf("%d", budgetID),
		New:      details,
		At:       s.now(),
	})
}
