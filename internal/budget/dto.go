package budget

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrBudgetNotFound occurs when a budget id resolves to nothing.
	ErrBudgetNotFound = errors.New("budget: budget not found")
	// ErrLineNotFound occurs when a budget line id resolves to nothing.
	ErrLineNotFound = errors.New("budget: line not found")
	// ErrNotDraft blocks mutation of budgets past the draft stage.
	ErrNotDraft = errors.New("budget: budget is not in draft status")
	// ErrAlreadySuperseded blocks revising a budget twice.
	ErrAlreadySuperseded = errors.New("budget: budget already superseded")
	// ErrDuplicateLine occurs when an account already has a line on the budget.
	ErrDuplicateLine = errors.New("budget: account already budgeted")
	// ErrNoHistory occurs when historical generation finds no base-year activity.
	ErrNoHistory = errors.New("budget: no activity in base year")
)

// CreateBudgetInput captures budget creation.
type CreateBudgetInput struct {
	Name       string
	BudgetYear int
	StartDate  time.Time
	EndDate    time.Time
	Currency   string
	ActorID    int64
}

// Validate ensures correctness before any write.
func (in CreateBudgetInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("budget: name required")
	}
	if in.BudgetYear == 0 {
		return errors.New("budget: year required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.StartDate.After(in.EndDate) {
		return errors.New("budget: invalid date range")
	}
	if in.ActorID == 0 {
		return errors.New("budget: actor required")
	}
	return nil
}

// LineInput captures one budget line with its twelve monthly figures.
type LineInput struct {
	AccountID    int64
	Category     string
	Subcategory  string
	CostCenterID *int64
	Department   string
	Monthly      MonthlyAmounts
	ActorID      int64
}

// Validate ensures correctness before any write.
func (in LineInput) Validate() error {
	if in.AccountID == 0 {
		return errors.New("budget: account required")
	}
	if in.ActorID == 0 {
		return errors.New("budget: actor required")
	}
	return nil
}

// GenerateInput configures budget generation from historical actuals.
type GenerateInput struct {
	Name       string
	BaseYear   int
	TargetYear int
	GrowthPct  float64
	Currency   string
	ActorID    int64
}

// Validate ensures correctness before any write.
func (in GenerateInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("budget: name required")
	}
	if in.BaseYear == 0 || in.TargetYear == 0 {
		return errors.New("budget: base and target years required")
	}
	if in.ActorID == 0 {
		return errors.New("budget: actor required")
	}
	return nil
}

// MonthOverrides maps calendar months to replacement amounts for one account.
type MonthOverrides map[time.Month]float64

// RevisionInput clones an existing budget with selective monthly overrides.
// Months absent from Overrides keep the original figures.
type RevisionInput struct {
	BudgetID  int64
	Overrides map[int64]MonthOverrides
	Reason    string
	ActorID   int64
}

// Validate ensures correctness before any write.
func (in RevisionInput) Validate() error {
	if in.BudgetID == 0 {
		return errors.New("budget: budget required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return errors.New("budget: revision reason required")
	}
	if in.ActorID == 0 {
		return errors.New("budget: actor required")
	}
	return nil
}
