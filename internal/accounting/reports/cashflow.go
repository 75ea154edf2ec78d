package reports

import (
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

// CashFlowStatement derives cash movement from the income statement using
// the indirect method. Investing and financing are explicit zero stubs in
// this version, and the working-capital delta is a known placeholder; both
// limitations are surfaced in the Notes field rather than hidden.
type CashFlowStatement struct {
	Start                time.Time `json:"start"`
	End                  time.Time `json:"end"`
	NetIncome            float64   `json:"net_income"`
	DepreciationAddBack  float64   `json:"depreciation_add_back"`
	WorkingCapitalDelta  float64   `json:"working_capital_delta"`
	OperatingActivities  float64   `json:"operating_activities"`
	InvestingActivities  float64   `json:"investing_activities"`
	FinancingActivities  float64   `json:"financing_activities"`
	NetChange            float64   `json:"net_change"`
	Notes                []string  `json:"notes"`
}

// BuildCashFlowStatement computes the operating section from period
// activity; depreciation expense is added back as a non-cash item.
func BuildCashFlowStatement(start, end time.Time, activity []AccountActivity) CashFlowStatement {
	is := BuildIncomeStatement(start, end, activity)
	cf := CashFlowStatement{
		Start:     start,
		End:       end,
		NetIncome: is.NetIncome,
		Notes: []string{
			"working capital delta not yet computed; reported as 0",
			"investing and financing sections not yet computed; reported as 0",
		},
	}
	for _, act := range activity {
		if act.Account.Type == accounts.AccountTypeExpense && act.Account.Subtype == accounts.SubtypeDepreciation {
			cf.DepreciationAddBack += act.Directed()
		}
	}
	cf.OperatingActivities = cf.NetIncome + cf.DepreciationAddBack + cf.WorkingCapitalDelta
	cf.NetChange = cf.OperatingActivities + cf.InvestingActivities + cf.FinancingActivities
	return cf
}
