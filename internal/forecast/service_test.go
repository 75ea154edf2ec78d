package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
)

// stubBalances dispatches on the query shape: the opening position reads
// from the epoch, prior-year sales span one month, and trailing averages
// span three.
type stubBalances struct {
	position  []reports.AccountPeriodBalance
	priorYear []reports.AccountPeriodBalance
	trailing  []reports.AccountPeriodBalance
}

func (s *stubBalances) PeriodBalances(_ context.Context, start, end time.Time) ([]reports.AccountPeriodBalance, error) {
	switch {
	case start.IsZero():
		return s.position, nil
	case end.Sub(start) < 45*24*time.Hour:
		return s.priorYear, nil
	default:
		return s.trailing, nil
	}
}

type stubInvoices struct {
	invoices []OpenInvoice
}

func (s *stubInvoices) OpenInvoices(_ context.Context, _ time.Time) ([]OpenInvoice, error) {
	return s.invoices, nil
}

type stubBudgets struct {
	monthly float64
	found   bool
}

func (s *stubBudgets) ApprovedMonthlyOperating(_ context.Context, _ int, _ time.Month) (float64, bool, error) {
	return s.monthly, s.found, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cashPosition(amount float64) []reports.AccountPeriodBalance {
	return []reports.AccountPeriodBalance{
		{Account: accounts.Account{ID: 1, Type: accounts.AccountTypeAsset, Subtype: accounts.SubtypeCash, IsActive: true}, Balance: amount},
	}
}

func TestCollectionProbabilityBuckets(t *testing.T) {
	cases := []struct {
		overdue int
		want    float64
	}{
		{-10, 0.95},
		{0, 0.95},
		{1, 0.85},
		{30, 0.85},
		{31, 0.70},
		{60, 0.70},
		{61, 0.50},
		{90, 0.50},
		{91, 0.25},
		{400, 0.25},
	}
	for _, tc := range cases {
		if got := CollectionProbability(tc.overdue); got != tc.want {
			t.Errorf("CollectionProbability(%d) = %.2f, want %.2f", tc.overdue, got, tc.want)
		}
	}
}

func TestGenerateInvalidRange(t *testing.T) {
	svc := NewService(&stubBalances{}, nil, nil, nil)

	_, err := svc.Generate(context.Background(), date(2025, 6, 1), date(2025, 1, 1), Options{})
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Generate(context.Background(), time.Time{}, date(2025, 1, 1), Options{})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestGenerateHorizonTooLong(t *testing.T) {
	svc := NewService(&stubBalances{}, nil, nil, nil)

	_, err := svc.Generate(context.Background(), date(2025, 1, 1), date(2040, 1, 1), Options{})
	require.ErrorIs(t, err, ErrHorizonTooLong)
}

func TestGenerateZeroFlows(t *testing.T) {
	svc := NewService(&stubBalances{position: cashPosition(5000)}, &stubInvoices{}, &stubBudgets{}, nil)

	fc, err := svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 6, 30), Options{})
	require.NoError(t, err)
	require.Len(t, fc.Months, 6)
	require.Equal(t, 5000.0, fc.OpeningBalance)

	// With no flows the balance never moves.
	for _, m := range fc.Months {
		require.Equal(t, 0.0, m.NetCashFlow)
		require.Equal(t, 5000.0, m.ClosingBalance)
	}
	require.Equal(t, 5000.0, fc.MinBalance)
	require.Equal(t, 5000.0, fc.MaxBalance)
	require.Equal(t, 0.0, fc.TotalInflows)
	require.Equal(t, 0.0, fc.TotalOutflows)
}

func TestGenerateCollectsEachInvoiceOnce(t *testing.T) {
	invoices := &stubInvoices{invoices: []OpenInvoice{
		{ID: 1, Total: 1000, DueDate: date(2025, 1, 31)},
	}}
	svc := NewService(&stubBalances{position: cashPosition(0)}, invoices, &stubBudgets{}, nil)

	fc, err := svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 3, 31), Options{})
	require.NoError(t, err)

	// Due on the month boundary: not yet overdue, collected at 0.95.
	require.Equal(t, 950.0, fc.Months[0].Inflows.ReceivablesCollection)
	require.Equal(t, 0.0, fc.Months[1].Inflows.ReceivablesCollection)
	require.Equal(t, 0.0, fc.Months[2].Inflows.ReceivablesCollection)
}

func TestGenerateOverdueInvoiceDiscounted(t *testing.T) {
	invoices := &stubInvoices{invoices: []OpenInvoice{
		{ID: 1, Total: 1000, DueDate: date(2024, 10, 1)},
	}}
	svc := NewService(&stubBalances{position: cashPosition(0)}, invoices, &stubBudgets{}, nil)

	fc, err := svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 1, 31), Options{})
	require.NoError(t, err)
	// More than 90 days overdue by month end.
	require.Equal(t, 250.0, fc.Months[0].Inflows.ReceivablesCollection)
}

func TestGenerateSalesGrowth(t *testing.T) {
	balances := &stubBalances{
		position: cashPosition(0),
		priorYear: []reports.AccountPeriodBalance{
			{Account: accounts.Account{ID: 5, Type: accounts.AccountTypeRevenue, Subtype: accounts.SubtypeSalesRevenue}, Balance: 1000},
		},
	}
	svc := NewService(balances, &stubInvoices{}, &stubBudgets{}, nil)

	// Unset rate applies the 5% default.
	fc, err := svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 1, 31), Options{})
	require.NoError(t, err)
	require.Equal(t, 1050.0, fc.Months[0].Inflows.SalesRevenue)

	rate := 0.10
	fc, err = svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 1, 31), Options{SalesGrowthRate: &rate})
	require.NoError(t, err)
	require.Equal(t, 1100.0, fc.Months[0].Inflows.SalesRevenue)

	// An explicit zero projects flat sales rather than the default.
	flat := 0.0
	fc, err = svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 1, 31), Options{SalesGrowthRate: &flat})
	require.NoError(t, err)
	require.Equal(t, 1000.0, fc.Months[0].Inflows.SalesRevenue)
}

func TestGeneratePayablesAndQuarterlyTax(t *testing.T) {
	balances := &stubBalances{position: []reports.AccountPeriodBalance{
		{Account: accounts.Account{ID: 1, Type: accounts.AccountTypeAsset, Subtype: accounts.SubtypeBank, IsActive: true}, Balance: 10000},
		{Account: accounts.Account{ID: 2, Type: accounts.AccountTypeLiability, Subtype: accounts.SubtypeAccountsPayable}, Balance: 2000},
		{Account: accounts.Account{ID: 3, Type: accounts.AccountTypeLiability, Subtype: accounts.SubtypeTaxLiability}, Balance: 300},
	}}
	svc := NewService(balances, &stubInvoices{}, &stubBudgets{}, nil)

	fc, err := svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 6, 30), Options{})
	require.NoError(t, err)

	for i, m := range fc.Months {
		require.Equal(t, 1600.0, m.Outflows.PayablesPayment, "month %d", i+1)
		if m.Month%3 == 0 {
			require.Equal(t, 300.0, m.Outflows.TaxPayments, "month %d", m.Month)
		} else {
			require.Equal(t, 0.0, m.Outflows.TaxPayments, "month %d", m.Month)
		}
	}
}

func TestGenerateOperatingExpensesFromBudget(t *testing.T) {
	balances := &stubBalances{
		position: cashPosition(0),
		trailing: []reports.AccountPeriodBalance{
			{Account: accounts.Account{ID: 6, Type: accounts.AccountTypeExpense}, Balance: 900},
		},
	}

	// Approved budget present: its plan wins over the trailing average.
	svc := NewService(balances, &stubInvoices{}, &stubBudgets{monthly: 1200, found: true}, nil)
	fc, err := svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 1, 31), Options{})
	require.NoError(t, err)
	require.Equal(t, 1200.0, fc.Months[0].Outflows.OperatingExpenses)

	// No approved budget: fall back to the three-month trailing average.
	svc = NewService(balances, &stubInvoices{}, &stubBudgets{}, nil)
	fc, err = svc.Generate(context.Background(), date(2025, 1, 1), date(2025, 1, 31), Options{})
	require.NoError(t, err)
	require.Equal(t, 300.0, fc.Months[0].Outflows.OperatingExpenses)
}

func TestBuildScenarios(t *testing.T) {
	scenarios := buildScenarios(1000, 10000, 8000)
	require.Len(t, scenarios, 3)

	byName := make(map[string]Scenario)
	for _, s := range scenarios {
		byName[s.Name] = s
	}
	opt := byName["optimistic"]
	require.Equal(t, 12000.0, opt.TotalInflows)
	require.Equal(t, 6400.0, opt.TotalOutflows)
	require.Equal(t, 6600.0, opt.ProjectedClosing)

	pes := byName["pessimistic"]
	require.Equal(t, 8000.0, pes.TotalInflows)
	require.Equal(t, 9600.0, pes.TotalOutflows)
	require.Equal(t, -600.0, pes.ProjectedClosing)

	con := byName["conservative"]
	require.Equal(t, 9000.0, con.TotalInflows)
	require.Equal(t, 8800.0, con.TotalOutflows)
	require.Equal(t, 1200.0, con.ProjectedClosing)
}

func TestBuildRecommendations(t *testing.T) {
	months := []MonthProjection{
		{Year: 2025, Month: 1, ClosingBalance: 500},
		{Year: 2025, Month: 2, ClosingBalance: -2500},
		{Year: 2025, Month: 3, ClosingBalance: 100},
	}
	recs := buildRecommendations(months, -2500)
	require.Len(t, recs, 1)
	require.Equal(t, "cash_shortage", recs[0].Type)
	require.Equal(t, "high", recs[0].Priority)
	require.Equal(t, 2, recs[0].Month)
	require.Equal(t, -2500.0, recs[0].Amount)
}

func TestBuildRecommendationsExcessCash(t *testing.T) {
	months := []MonthProjection{
		{Year: 2025, Month: 1, ClosingBalance: 150000},
	}
	recs := buildRecommendations(months, 150000)
	require.Len(t, recs, 1)
	require.Equal(t, "excess_cash", recs[0].Type)
	require.Equal(t, "medium", recs[0].Priority)

	// A floor at the threshold is not flagged.
	recs = buildRecommendations(months, 100000)
	require.Empty(t, recs)
}
