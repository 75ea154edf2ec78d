package reports

import (
	"math"
	"sort"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
)

// BalanceSheetRow summarises one account inside a section.
type BalanceSheetRow struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// BalanceSheetSection groups accounts by subtype classification.
type BalanceSheetSection struct {
	Label string            `json:"label"`
	Rows  []BalanceSheetRow `json:"rows"`
	Total float64           `json:"total"`
}

// BalanceSheet partitions active accounts into assets, liabilities, and
// equity, split current versus fixed/long-term. Unclosed revenue and
// expense activity is folded into equity as a computed current-period
// earnings line, so the identity holds without waiting for closing entries.
type BalanceSheet struct {
	AsOf                 time.Time           `json:"as_of"`
	CurrentAssets        BalanceSheetSection `json:"current_assets"`
	FixedAssets          BalanceSheetSection `json:"fixed_assets"`
	CurrentLiabilities   BalanceSheetSection `json:"current_liabilities"`
	LongTermLiabilities  BalanceSheetSection `json:"long_term_liabilities"`
	Equity               BalanceSheetSection `json:"equity"`
	TotalAssets          float64             `json:"total_assets"`
	TotalLiabilities     float64             `json:"total_liabilities"`
	TotalEquity          float64             `json:"total_equity"`
	LiabilitiesAndEquity float64             `json:"liabilities_and_equity"`
	Balanced             bool                `json:"balanced"`
}

// BuildBalanceSheet aggregates directed balances into the statement.
func BuildBalanceSheet(asOf time.Time, activity []AccountActivity) BalanceSheet {
	bs := BalanceSheet{
		AsOf:                asOf,
		CurrentAssets:       BalanceSheetSection{Label: "Current Assets"},
		FixedAssets:         BalanceSheetSection{Label: "Fixed Assets"},
		CurrentLiabilities:  BalanceSheetSection{Label: "Current Liabilities"},
		LongTermLiabilities: BalanceSheetSection{Label: "Long-Term Liabilities"},
		Equity:              BalanceSheetSection{Label: "Equity"},
	}
	var earnings float64
	for _, act := range activity {
		if !act.Account.IsActive {
			continue
		}
		row := BalanceSheetRow{Code: act.Account.Code, Name: act.Account.Name, Balance: act.Directed()}
		switch act.Account.Type {
		case accounts.AccountTypeAsset:
			bs.TotalAssets += row.Balance
			if act.Account.Subtype == accounts.SubtypeFixedAsset {
				appendRow(&bs.FixedAssets, row)
			} else {
				appendRow(&bs.CurrentAssets, row)
			}
		case accounts.AccountTypeLiability:
			bs.TotalLiabilities += row.Balance
			if act.Account.Subtype == accounts.SubtypeLongTermLiability {
				appendRow(&bs.LongTermLiabilities, row)
			} else {
				appendRow(&bs.CurrentLiabilities, row)
			}
		case accounts.AccountTypeEquity:
			bs.TotalEquity += row.Balance
			appendRow(&bs.Equity, row)
		case accounts.AccountTypeRevenue:
			earnings += row.Balance
		case accounts.AccountTypeExpense:
			earnings -= row.Balance
		}
	}
	for _, section := range []*BalanceSheetSection{&bs.CurrentAssets, &bs.FixedAssets, &bs.CurrentLiabilities, &bs.LongTermLiabilities, &bs.Equity} {
		sort.Slice(section.Rows, func(i, j int) bool { return section.Rows[i].Code < section.Rows[j].Code })
	}
	if math.Abs(earnings) > ledger.BalanceTolerance {
		bs.TotalEquity += earnings
		appendRow(&bs.Equity, BalanceSheetRow{Name: "Current Period Earnings", Balance: earnings})
	}
	bs.LiabilitiesAndEquity = bs.TotalLiabilities + bs.TotalEquity
	bs.Balanced = math.Abs(bs.TotalAssets-bs.LiabilitiesAndEquity) <= ledger.BalanceTolerance
	return bs
}

func appendRow(section *BalanceSheetSection, row BalanceSheetRow) {
	section.Rows = append(section.Rows, row)
	section.Total += row.Balance
}
