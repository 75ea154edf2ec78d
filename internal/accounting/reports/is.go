package reports

import (
	"sort"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

// IncomeStatementRow is one revenue or expense account over the period.
type IncomeStatementRow struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// IncomeStatementSection groups accounts by nature.
type IncomeStatementSection struct {
	Label string               `json:"label"`
	Rows  []IncomeStatementRow `json:"rows"`
	Total float64              `json:"total"`
}

// IncomeStatement reports revenue, expense, and net income for a period.
type IncomeStatement struct {
	Start     time.Time              `json:"start"`
	End       time.Time              `json:"end"`
	Revenue   IncomeStatementSection `json:"revenue"`
	Expense   IncomeStatementSection `json:"expense"`
	NetIncome float64                `json:"net_income"`
	MarginPct float64                `json:"margin_pct"`
}

// BuildIncomeStatement aggregates period activity into the statement.
// Margin is zero when there is no revenue.
func BuildIncomeStatement(start, end time.Time, activity []AccountActivity) IncomeStatement {
	is := IncomeStatement{
		Start:   start,
		End:     end,
		Revenue: IncomeStatementSection{Label: "Revenue"},
		Expense: IncomeStatementSection{Label: "Expense"},
	}
	for _, act := range activity {
		row := IncomeStatementRow{Code: act.Account.Code, Name: act.Account.Name, Amount: act.Directed()}
		switch act.Account.Type {
		case accounts.AccountTypeRevenue:
			is.Revenue.Rows = append(is.Revenue.Rows, row)
			is.Revenue.Total += row.Amount
		case accounts.AccountTypeExpense:
			is.Expense.Rows = append(is.Expense.Rows, row)
			is.Expense.Total += row.Amount
		}
	}
	sort.Slice(is.Revenue.Rows, func(i, j int) bool { return is.Revenue.Rows[i].Code < is.Revenue.Rows[j].Code })
	sort.Slice(is.Expense.Rows, func(i, j int) bool { return is.Expense.Rows[i].Code < is.Expense.Rows[j].Code })
	is.NetIncome = is.Revenue.Total - is.Expense.Total
	if is.Revenue.Total != 0 {
		is.MarginPct = is.NetIncome / is.Revenue.Total * 100
	}
	return is
}
