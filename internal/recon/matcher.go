package recon

import (
	"math"
	"time"
)

// amountTolerance is the absolute difference under which two amounts match.
const amountTolerance = 0.01

// dateToleranceDays is the window within which posting dates match.
const dateToleranceDays = 2

// BookTransaction is one signed ledger movement on the reconciled account,
// debit positive.
type BookTransaction struct {
	TransactionID int64     `json:"transaction_id"`
	EntryID       int64     `json:"entry_id"`
	Reference     string    `json:"reference"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
}

// BankTransaction is one externally supplied statement line.
type BankTransaction struct {
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
}

// MatchPair records a reconciled book/bank pairing.
type MatchPair struct {
	Book BookTransaction `json:"book"`
	Bank BankTransaction `json:"bank"`
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	StatementDate            time.Time         `json:"statement_date"`
	BookBalance              float64           `json:"book_balance"`
	BankEndingBalance        float64           `json:"bank_ending_balance"`
	Matches                  []MatchPair       `json:"matches"`
	OutstandingDeposits      []BookTransaction `json:"outstanding_deposits"`
	OutstandingChecks        []BookTransaction `json:"outstanding_checks"`
	TotalOutstandingDeposits float64           `json:"total_outstanding_deposits"`
	TotalOutstandingChecks   float64           `json:"total_outstanding_checks"`
	ReconciledBalance        float64           `json:"reconciled_balance"`
	IsReconciled             bool              `json:"is_reconciled"`
	UnmatchedBank            []BankTransaction `json:"unmatched_bank"`
	UnmatchedBook            []BookTransaction `json:"unmatched_book"`
	Variance                 float64           `json:"variance"`
}

func amountsMatch(a, b float64) bool {
	return math.Abs(a-b) < amountTolerance
}

func datesMatch(a, b time.Time) bool {
	days := a.Sub(b).Hours() / 24
	return math.Abs(days) <= dateToleranceDays
}

// Reconcile greedily pairs book movements against bank statement lines and
// derives the outstanding-item balance check. Both inputs are read-only.
func Reconcile(statementDate time.Time, book []BookTransaction, bank []BankTransaction, bankEndingBalance float64) Result {
	result := Result{StatementDate: statementDate, BankEndingBalance: bankEndingBalance}

	bankUsed := make([]bool, len(bank))
	for _, bt := range book {
		result.BookBalance += bt.Amount
		matched := false
		for i, stmt := range bank {
			if bankUsed[i] || !amountsMatch(bt.Amount, stmt.Amount) || !datesMatch(bt.Date, stmt.Date) {
				continue
			}
			bankUsed[i] = true
			matched = true
			result.Matches = append(result.Matches, MatchPair{Book: bt, Bank: stmt})
			break
		}
		if matched {
			continue
		}
		result.UnmatchedBook = append(result.UnmatchedBook, bt)
		if bt.Amount > 0 {
			result.OutstandingDeposits = append(result.OutstandingDeposits, bt)
			result.TotalOutstandingDeposits += bt.Amount
		} else {
			result.OutstandingChecks = append(result.OutstandingChecks, bt)
			result.TotalOutstandingChecks += -bt.Amount
		}
	}
	for i, stmt := range bank {
		if !bankUsed[i] {
			result.UnmatchedBank = append(result.UnmatchedBank, stmt)
		}
	}

	result.BookBalance = round2(result.BookBalance)
	result.TotalOutstandingDeposits = round2(result.TotalOutstandingDeposits)
	result.TotalOutstandingChecks = round2(result.TotalOutstandingChecks)
	result.ReconciledBalance = round2(result.BookBalance + result.TotalOutstandingDeposits - result.TotalOutstandingChecks)
	result.Variance = round2(result.BankEndingBalance - result.ReconciledBalance)
	result.IsReconciled = math.Abs(result.Variance) <= amountTolerance
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
