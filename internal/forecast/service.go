package forecast

import (
	"context"
	"log/slog"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
)

// BalanceReader reads directed account balances from committed ledger state.
type BalanceReader interface {
	PeriodBalances(ctx context.Context, start, end time.Time) ([]reports.AccountPeriodBalance, error)
}

// InvoicePort supplies uncollected receivables.
type InvoicePort interface {
	OpenInvoices(ctx context.Context, asOf time.Time) ([]OpenInvoice, error)
}

// BudgetPort supplies the approved operating-expense plan per month.
type BudgetPort interface {
	ApprovedMonthlyOperating(ctx context.Context, year int, month time.Month) (float64, bool, error)
}

// Service projects monthly cash position from ledger balances, open
// receivables, and the approved budget. Generation is read-only.
type Service struct {
	balances BalanceReader
	invoices InvoicePort
	budgets  BudgetPort
	logger   *slog.Logger
}

func NewService(balances BalanceReader, invoices InvoicePort, budgets BudgetPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{balances: balances, invoices: invoices, budgets: budgets, logger: logger}
}

// Generate walks the horizon month by month. The opening balance is the
// cash position the day before start; each month's closing carries forward.
func (s *Service) Generate(ctx context.Context, start, end time.Time, opts Options) (Forecast, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return Forecast{}, ErrInvalidRange
	}

	asOf := start.AddDate(0, 0, -1)
	opening, payablesBase, taxBase, err := s.positionAsOf(ctx, asOf)
	if err != nil {
		return Forecast{}, err
	}

	var invoices []OpenInvoice
	if s.invoices != nil {
		invoices, err = s.invoices.OpenInvoices(ctx, start)
		if err != nil {
			return Forecast{}, err
		}
	}
	collected := make([]bool, len(invoices))

	fc := Forecast{Start: start, End: end, OpeningBalance: round2(opening)}
	balance := fc.OpeningBalance
	fc.MinBalance, fc.MaxBalance = balance, balance

	monthStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	for !monthStart.After(end) {
		if len(fc.Months) >= maxMonths {
			return Forecast{}, ErrHorizonTooLong
		}
		monthEnd := monthStart.AddDate(0, 1, -1)

		var in Inflows
		for i, inv := range invoices {
			if collected[i] || inv.DueDate.After(monthEnd) {
				continue
			}
			overdue := int(monthEnd.Sub(inv.DueDate).Hours() / 24)
			in.ReceivablesCollection += inv.Total * CollectionProbability(overdue)
			collected[i] = true
		}
		sales, err := s.priorYearSales(ctx, monthStart, monthEnd)
		if err != nil {
			return Forecast{}, err
		}
		in.SalesRevenue = sales * (1 + opts.growthRate())
		in.OtherIncome, err = s.trailingAverage(ctx, monthStart, otherIncomeBalance)
		if err != nil {
			return Forecast{}, err
		}
		in.ReceivablesCollection = round2(in.ReceivablesCollection)
		in.SalesRevenue = round2(in.SalesRevenue)
		in.Total = round2(in.ReceivablesCollection + in.SalesRevenue + in.OtherIncome)

		var out Outflows
		out.PayablesPayment = round2(payablesBase * 0.8)
		opex, found, err := s.budgetedOperating(ctx, monthStart)
		if err != nil {
			return Forecast{}, err
		}
		if !found {
			opex, err = s.trailingAverage(ctx, monthStart, expenseBalance)
			if err != nil {
				return Forecast{}, err
			}
		}
		out.OperatingExpenses = round2(opex)
		if int(monthStart.Month())%3 == 0 {
			out.TaxPayments = round2(taxBase)
		}
		out.Total = round2(out.PayablesPayment + out.OperatingExpenses + out.CapitalExpenditure + out.LoanPayments + out.TaxPayments)

		proj := MonthProjection{
			Year:           monthStart.Year(),
			Month:          int(monthStart.Month()),
			Inflows:        in,
			Outflows:       out,
			NetCashFlow:    round2(in.Total - out.Total),
			OpeningBalance: balance,
		}
		balance = round2(balance + proj.NetCashFlow)
		proj.ClosingBalance = balance
		fc.Months = append(fc.Months, proj)
		fc.TotalInflows += in.Total
		fc.TotalOutflows += out.Total
		if balance < fc.MinBalance {
			fc.MinBalance = balance
		}
		if balance > fc.MaxBalance {
			fc.MaxBalance = balance
		}

		monthStart = monthStart.AddDate(0, 1, 0)
	}

	fc.TotalInflows = round2(fc.TotalInflows)
	fc.TotalOutflows = round2(fc.TotalOutflows)
	fc.Scenarios = buildScenarios(fc.OpeningBalance, fc.TotalInflows, fc.TotalOutflows)
	fc.Recommendations = buildRecommendations(fc.Months, fc.MinBalance)
	return fc, nil
}

// positionAsOf sums the cash, payable, and tax-liability positions in one
// balance read.
func (s *Service) positionAsOf(ctx context.Context, asOf time.Time) (cash, payables, tax float64, err error) {
	balances, err := s.balances.PeriodBalances(ctx, time.Time{}, asOf)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, b := range balances {
		switch {
		case b.Account.IsCashLike():
			cash += b.Balance
		case b.Account.Subtype == accounts.SubtypeAccountsPayable:
			payables += b.Balance
		case b.Account.IsTaxLiability():
			tax += b.Balance
		}
	}
	return cash, payables, tax, nil
}

func (s *Service) priorYearSales(ctx context.Context, monthStart, monthEnd time.Time) (float64, error) {
	balances, err := s.balances.PeriodBalances(ctx, monthStart.AddDate(-1, 0, 0), monthEnd.AddDate(-1, 0, 0))
	if err != nil {
		return 0, err
	}
	var total float64
	for _, b := range balances {
		if b.Account.Type == accounts.AccountTypeRevenue && b.Account.Subtype == accounts.SubtypeSalesRevenue {
			total += b.Balance
		}
	}
	return total, nil
}

func otherIncomeBalance(b reports.AccountPeriodBalance) bool {
	return b.Account.Type == accounts.AccountTypeRevenue && b.Account.Subtype != accounts.SubtypeSalesRevenue
}

func expenseBalance(b reports.AccountPeriodBalance) bool {
	return b.Account.Type == accounts.AccountTypeExpense
}

// trailingAverage averages the three months preceding monthStart for
// accounts matched by the filter.
func (s *Service) trailingAverage(ctx context.Context, monthStart time.Time, match func(reports.AccountPeriodBalance) bool) (float64, error) {
	balances, err := s.balances.PeriodBalances(ctx, monthStart.AddDate(0, -3, 0), monthStart.AddDate(0, 0, -1))
	if err != nil {
		return 0, err
	}
	var total float64
	for _, b := range balances {
		if match(b) {
			total += b.Balance
		}
	}
	return round2(total / 3), nil
}

func (s *Service) budgetedOperating(ctx context.Context, monthStart time.Time) (float64, bool, error) {
	if s.budgets == nil {
		return 0, false, nil
	}
	return s.budgets.ApprovedMonthlyOperating(ctx, monthStart.Year(), monthStart.Month())
}
