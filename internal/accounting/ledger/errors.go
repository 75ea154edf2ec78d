package ledger

import "errors"

var (
	// ErrTooFewEntries indicates less than two entries.
	ErrTooFewEntries = errors.New("ledger: transaction requires at least two entries")
	// ErrUnbalanced indicates debit totals differ from credit totals.
	ErrUnbalanced = errors.New("ledger: transaction does not balance")
	// ErrAmountConflict indicates an entry with both or neither side set.
	ErrAmountConflict = errors.New("ledger: entry must carry exactly one of debit or credit")
	// ErrNegativeAmount indicates a negative debit or credit.
	ErrNegativeAmount = errors.New("ledger: negative amount")
	// ErrAccountInactive indicates an entry references a deactivated account.
	ErrAccountInactive = errors.New("ledger: account is inactive")
	// ErrAccountMissing indicates an entry references an unknown account.
	ErrAccountMissing = errors.New("ledger: account not found")
	// ErrDuplicateReference indicates a reference number collision.
	ErrDuplicateReference = errors.New("ledger: reference number already used")
	// ErrTransactionNotFound indicates a missing transaction.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	// ErrConsistency indicates the post-write balance re-check failed. This
	// should be unreachable given validation; treat it as a bug signal.
	ErrConsistency = errors.New("ledger: stored entries violate balance invariant")
)
