package reports

import (
	"math"
	"sort"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
)

// TrialBalanceRow is one account line partitioned into a debit or credit
// column by the sign of its balance.
type TrialBalanceRow struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`
}

// TrialBalance lists account balances verifying debits equal credits.
type TrialBalance struct {
	AsOf        time.Time         `json:"as_of"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  float64           `json:"total_debit"`
	TotalCredit float64           `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// BuildTrialBalance partitions signed balances into columns and totals them.
func BuildTrialBalance(asOf time.Time, activity []AccountActivity) TrialBalance {
	tb := TrialBalance{AsOf: asOf}
	for _, act := range activity {
		signed := act.Signed()
		if signed == 0 {
			continue
		}
		row := TrialBalanceRow{Code: act.Account.Code, Name: act.Account.Name, Type: string(act.Account.Type)}
		if signed > 0 {
			row.Debit = signed
		} else {
			row.Credit = -signed
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.Balanced = math.Abs(tb.TotalDebit-tb.TotalCredit) <= ledger.BalanceTolerance
	return tb
}
