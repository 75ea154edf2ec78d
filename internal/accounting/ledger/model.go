package ledger

import (
	"time"

	"github.com/google/uuid"
)

// BalanceTolerance is the absolute tolerance for debit/credit equality.
const BalanceTolerance = 0.01

// TransactionType enumerates journal entry origins.
type TransactionType string

const (
	TypeJournalEntry   TransactionType = "JOURNAL_ENTRY"
	TypeAdjustingEntry TransactionType = "ADJUSTING_ENTRY"
	TypeBankAdjustment TransactionType = "BANK_ADJUSTMENT"
	TypeClosingEntry   TransactionType = "CLOSING_ENTRY"
	TypeRecurringEntry TransactionType = "RECURRING_ENTRY"
)

// ApprovalStatus models the posting approval state machine. Draft requests
// are never persisted; a stored transaction is either pending or approved.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
)

// Transaction is a journal entry header. Amounts are stored in base
// currency; the header itself always carries exchange rate 1.
type Transaction struct {
	ID               int64
	ReferenceNumber  string
	Description      string
	DescriptionLocal string
	Date             time.Time
	Type             TransactionType
	SourceType       string
	SourceID         uuid.UUID
	TotalAmount      float64
	Currency         string
	ExchangeRate     float64
	CostCenterID     *int64
	Tags             []string
	ApprovalStatus   ApprovalStatus
	CreatedBy        int64
	ApprovedBy       *int64
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Entries          []TransactionEntry
}

// TransactionEntry stores one debit or credit leg. Debit and Credit hold
// base-currency amounts; OriginalDebit/OriginalCredit preserve the amount
// as entered together with its currency and the rate applied.
type TransactionEntry struct {
	ID             int64
	TransactionID  int64
	AccountID      int64
	Debit          float64
	Credit         float64
	OriginalDebit  float64
	OriginalCredit float64
	Currency       string
	ExchangeRate   float64
	Description    string
	Metadata       map[string]string
	CreatedAt      time.Time
}

// AccountBalance is the cached projection of an account position. It is
// recomputable at any time from entry history and never the source of truth.
type AccountBalance struct {
	AccountID int64
	Debit     float64
	Credit    float64
	UpdatedAt time.Time
}

// StatementLine is one dated movement on a single account, read from entry
// history joined to its transaction header.
type StatementLine struct {
	TransactionID   int64
	EntryID         int64
	ReferenceNumber string
	Date            time.Time
	Debit           float64
	Credit          float64
	Description     string
}

// Amount returns the signed movement, debit positive.
func (l StatementLine) Amount() float64 {
	return l.Debit - l.Credit
}
