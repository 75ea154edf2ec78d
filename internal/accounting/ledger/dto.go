package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntryInput describes one leg of a transaction as entered, in its own
// currency. Exactly one of Debit or Credit must be strictly positive.
type EntryInput struct {
	AccountID   int64
	Debit       float64
	Credit      float64
	Currency    string
	Description string
	Metadata    map[string]string
}

// CreateTransactionInput groups the fields required to post a transaction.
// ActorID and Date are explicit; the ledger never reads an ambient user or
// clock.
type CreateTransactionInput struct {
	ReferenceNumber  string
	Description      string
	DescriptionLocal string
	Date             time.Time
	Type             TransactionType
	SourceType       string
	SourceID         uuid.UUID
	CostCenterID     *int64
	Tags             []string
	RequiresApproval bool
	ActorID          int64
	Entries          []EntryInput
}

// Validate runs every precondition before any write. The balance check uses
// the amounts as entered; conversion re-verifies against base currency.
func (in CreateTransactionInput) Validate() error {
	if strings.TrimSpace(in.ReferenceNumber) == "" {
		return errors.New("ledger: reference number required")
	}
	if in.Date.IsZero() {
		return errors.New("ledger: transaction date required")
	}
	if in.ActorID == 0 {
		return errors.New("ledger: actor required")
	}
	if len(in.Entries) < 2 {
		return ErrTooFewEntries
	}
	var debit, credit float64
	for idx, entry := range in.Entries {
		if entry.AccountID == 0 {
			return fmt.Errorf("ledger: entry %d missing account: %w", idx, ErrAccountMissing)
		}
		if entry.Debit < 0 || entry.Credit < 0 {
			return fmt.Errorf("ledger: entry %d: %w", idx, ErrNegativeAmount)
		}
		if (entry.Debit > 0) == (entry.Credit > 0) {
			return fmt.Errorf("ledger: entry %d: %w", idx, ErrAmountConflict)
		}
		debit += entry.Debit
		credit += entry.Credit
	}
	if math.Abs(debit-credit) > BalanceTolerance {
		return fmt.Errorf("%w: debits %.2f credits %.2f", ErrUnbalanced, debit, credit)
	}
	return nil
}

// Balanced reports whether a set of stored entries satisfies the invariant.
func Balanced(entries []TransactionEntry) bool {
	var debit, credit float64
	for _, e := range entries {
		debit += e.Debit
		credit += e.Credit
	}
	return math.Abs(debit-credit) <= BalanceTolerance
}
