package entries

import (
	"errors"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
)

var (
	// ErrTaxCalculation indicates the tax collaborator failed; the whole
	// advanced entry aborts.
	ErrTaxCalculation = errors.New("entries: tax calculation failed")
	// ErrUnknownFrequency indicates an unsupported recurrence step.
	ErrUnknownFrequency = errors.New("entries: unknown frequency")
	// ErrTooManyOccurrences guards recurring loops against malformed input.
	ErrTooManyOccurrences = errors.New("entries: recurrence exceeds occurrence limit")
)

// maxOccurrences bounds recurring generation beyond the caller-supplied
// end date.
const maxOccurrences = 1000

// TaxLineInput requests one computed tax posting. The resulting debit and
// credit legs always carry the same amount, so appending them preserves
// the balance invariant by construction.
type TaxLineInput struct {
	TaxCode         string
	TaxableAmount   float64
	DebitAccountID  int64
	CreditAccountID int64
	Description     string
}

// AdvancedEntryInput is a journal entry request with optional tax lines.
type AdvancedEntryInput struct {
	ledger.CreateTransactionInput
	TaxLines []TaxLineInput
}

// Frequency enumerates recurrence steps.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// Next advances a date by one frequency step.
func (f Frequency) Next(date time.Time) (time.Time, error) {
	switch f {
	case FrequencyDaily:
		return date.AddDate(0, 0, 1), nil
	case FrequencyWeekly:
		return date.AddDate(0, 0, 7), nil
	case FrequencyMonthly:
		return date.AddDate(0, 1, 0), nil
	case FrequencyQuarterly:
		return date.AddDate(0, 3, 0), nil
	case FrequencyYearly:
		return date.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, ErrUnknownFrequency
	}
}

// RecurringEntryInput repeats a template entry between two dates.
type RecurringEntryInput struct {
	Template  ledger.CreateTransactionInput
	StartDate time.Time
	EndDate   time.Time
	Frequency Frequency
}

// OccurrenceResult reports one recurring occurrence. Occurrences are
// independent atomic units; a failure never invalidates siblings.
type OccurrenceResult struct {
	Date        time.Time
	Transaction ledger.Transaction
	Err         error
}

// RecurringRunResult summarises a recurring generation run.
type RecurringRunResult struct {
	Occurrences []OccurrenceResult
}

// Failed returns the occurrences that did not post.
func (r RecurringRunResult) Failed() []OccurrenceResult {
	var out []OccurrenceResult
	for _, occ := range r.Occurrences {
		if occ.Err != nil {
			out = append(out, occ)
		}
	}
	return out
}

// ReverseInput requests a reversing entry for an existing transaction.
type ReverseInput struct {
	TransactionID int64
	ActorID       int64
	Date          *time.Time
}

// ClosingInput requests closing entries for a period.
type ClosingInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	ActorID     int64
}

// ClosingResult reports the two independent closing groups. One group's
// failure does not block the other.
type ClosingResult struct {
	Revenue *ledger.Transaction
	Expense *ledger.Transaction
	Errors  []error
}
