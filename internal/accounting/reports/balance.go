package reports

import (
	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

// AccountActivity aggregates debit/credit movement for one account over a
// period.
type AccountActivity struct {
	Account accounts.Account
	Debit   float64
	Credit  float64
}

// Signed returns the raw debit-minus-credit balance, used by the trial
// balance to partition rows into columns.
func (a AccountActivity) Signed() float64 {
	return a.Debit - a.Credit
}

// Directed returns the balance oriented by the account's normal side:
// credit minus debit for revenue/liability/equity, debit minus credit for
// asset/expense. The budget engine and forecaster share this convention.
func (a AccountActivity) Directed() float64 {
	return DirectedBalance(a.Account.Type, a.Debit, a.Credit)
}

// DirectedBalance applies the period balance sign convention.
func DirectedBalance(accType accounts.AccountType, debit, credit float64) float64 {
	switch accType {
	case accounts.AccountTypeRevenue, accounts.AccountTypeLiability, accounts.AccountTypeEquity:
		return credit - debit
	default:
		return debit - credit
	}
}

// AccountPeriodBalance pairs an account with its directed period balance.
type AccountPeriodBalance struct {
	Account accounts.Account
	Balance float64
}

// AccountMonthlyActivity holds directed balances per calendar month of one
// year, January first.
type AccountMonthlyActivity struct {
	Account accounts.Account
	Months  [12]float64
}
