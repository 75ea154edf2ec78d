package entries

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
)

// LedgerPort is the single write path into the ledger core.
type LedgerPort interface {
	CreateTransaction(ctx context.Context, input ledger.CreateTransactionInput) (ledger.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (ledger.Transaction, error)
}

// TaxPort computes tax amounts for advanced entries.
type TaxPort interface {
	CalculateTax(ctx context.Context, taxableAmount float64, taxCode string) (float64, error)
	TaxRate(ctx context.Context, taxCode string) (float64, error)
}

// AccountsPort resolves standard accounts lazily.
type AccountsPort interface {
	FindOrCreate(ctx context.Context, spec accounts.Spec) (accounts.Account, error)
}

// BalancePort reads period balances for closing-entry generation.
type BalancePort interface {
	PeriodBalances(ctx context.Context, start, end time.Time) ([]reports.AccountPeriodBalance, error)
}

// Service composes higher-level journal entry types from repeated calls
// into the ledger core.
type Service struct {
	ledger   LedgerPort
	accounts AccountsPort
	balances BalancePort
	tax      TaxPort
	logger   *slog.Logger
}

func NewService(ledgerPort LedgerPort, accountsPort AccountsPort, balancePort BalancePort, taxPort TaxPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledgerPort, accounts: accountsPort, balances: balancePort, tax: taxPort, logger: logger}
}

// PostAdvanced posts a multi-currency entry with optional tax lines. Tax
// entries are computed and appended before the ledger validates, so the
// balance check always sees the final entry set.
func (s *Service) PostAdvanced(ctx context.Context, input AdvancedEntryInput) (ledger.Transaction, error) {
	req := input.CreateTransactionInput
	for _, line := range input.TaxLines {
		if s.tax == nil {
			return ledger.Transaction{}, fmt.Errorf("%w: no tax collaborator configured", ErrTaxCalculation)
		}
		amount, err := s.tax.CalculateTax(ctx, line.TaxableAmount, line.TaxCode)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("%w: code %s: %v", ErrTaxCalculation, line.TaxCode, err)
		}
		if amount == 0 {
			continue
		}
		meta := map[string]string{"tax_code": line.TaxCode}
		req.Entries = append(req.Entries,
			ledger.EntryInput{AccountID: line.DebitAccountID, Debit: amount, Description: line.Description, Metadata: meta},
			ledger.EntryInput{AccountID: line.CreditAccountID, Credit: amount, Description: line.Description, Metadata: meta},
		)
	}
	return s.ledger.CreateTransaction(ctx, req)
}

// PostAdjusting posts an adjusting entry; approval is always required.
func (s *Service) PostAdjusting(ctx context.Context, input AdvancedEntryInput) (ledger.Transaction, error) {
	input.Type = ledger.TypeAdjustingEntry
	input.RequiresApproval = true
	return s.PostAdvanced(ctx, input)
}

// PostRecurring builds one transaction per occurrence between start and
// end. Each occurrence is its own atomic unit; failures are collected and
// do not roll back or block siblings.
func (s *Service) PostRecurring(ctx context.Context, input RecurringEntryInput) (RecurringRunResult, error) {
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.StartDate.After(input.EndDate) {
		return RecurringRunResult{}, fmt.Errorf("entries: invalid recurrence range")
	}
	if _, err := input.Frequency.Next(input.StartDate); err != nil {
		return RecurringRunResult{}, err
	}
	var result RecurringRunResult
	date := input.StartDate
	for !date.After(input.EndDate) {
		if len(result.Occurrences) >= maxOccurrences {
			return result, ErrTooManyOccurrences
		}
		occ := input.Template
		occ.Date = date
		occ.Type = ledger.TypeRecurringEntry
		occ.ReferenceNumber = fmt.Sprintf("%s-%s", input.Template.ReferenceNumber, date.Format("20060102"))
		txn, err := s.ledger.CreateTransaction(ctx, occ)
		if err != nil {
			s.logger.Warn("recurring occurrence failed",
				slog.String("reference", occ.ReferenceNumber),
				slog.Any("error", err))
		}
		result.Occurrences = append(result.Occurrences, OccurrenceResult{Date: date, Transaction: txn, Err: err})
		next, err := input.Frequency.Next(date)
		if err != nil {
			return result, err
		}
		date = next
	}
	return result, nil
}

// Reverse posts a transaction that exactly undoes a prior one by swapping
// debit and credit sides, using the original pre-conversion amounts when
// available. Reversing a reversal restores the original orientation.
func (s *Service) Reverse(ctx context.Context, input ReverseInput) (ledger.Transaction, error) {
	original, err := s.ledger.GetTransaction(ctx, input.TransactionID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	date := original.Date
	if input.Date != nil {
		date = *input.Date
	}
	req := ledger.CreateTransactionInput{
		ReferenceNumber: "REV-" + original.ReferenceNumber,
		Description:     "Reversal of " + original.ReferenceNumber,
		Date:            date,
		Type:            ledger.TypeJournalEntry,
		SourceType:      "ledger.reversal",
		SourceID:        uuid.New(),
		CostCenterID:    original.CostCenterID,
		Tags:            original.Tags,
		ActorID:         input.ActorID,
	}
	for _, e := range original.Entries {
		debit, credit := e.Debit, e.Credit
		currency := ""
		if e.OriginalDebit > 0 || e.OriginalCredit > 0 {
			debit, credit = e.OriginalDebit, e.OriginalCredit
			currency = e.Currency
		}
		req.Entries = append(req.Entries, ledger.EntryInput{
			AccountID:   e.AccountID,
			Debit:       credit,
			Credit:      debit,
			Currency:    currency,
			Description: e.Description,
			Metadata:    e.Metadata,
		})
	}
	return s.ledger.CreateTransaction(ctx, req)
}

// GenerateClosing zeroes out revenue and expense accounts into the income
// summary account at period end. The two groups are independent; one
// group's failure is recorded and does not block the other.
func (s *Service) GenerateClosing(ctx context.Context, input ClosingInput) (ClosingResult, error) {
	balances, err := s.balances.PeriodBalances(ctx, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		return ClosingResult{}, err
	}
	summary, err := s.accounts.FindOrCreate(ctx, accounts.SpecIncomeSummary)
	if err != nil {
		return ClosingResult{}, err
	}

	var result ClosingResult
	if txn, err := s.closeGroup(ctx, input, balances, summary, accounts.AccountTypeRevenue); err != nil {
		s.logger.Warn("revenue closing failed", slog.Any("error", err))
		result.Errors = append(result.Errors, err)
	} else if txn != nil {
		result.Revenue = txn
	}
	if txn, err := s.closeGroup(ctx, input, balances, summary, accounts.AccountTypeExpense); err != nil {
		s.logger.Warn("expense closing failed", slog.Any("error", err))
		result.Errors = append(result.Errors, err)
	} else if txn != nil {
		result.Expense = txn
	}
	return result, nil
}

func (s *Service) closeGroup(ctx context.Context, input ClosingInput, balances []reports.AccountPeriodBalance, summary accounts.Account, accType accounts.AccountType) (*ledger.Transaction, error) {
	var legs []ledger.EntryInput
	var net float64
	for _, b := range balances {
		if b.Account.Type != accType || math.Abs(b.Balance) <= ledger.BalanceTolerance {
			continue
		}
		leg := ledger.EntryInput{AccountID: b.Account.ID, Description: "Period close"}
		if accType == accounts.AccountTypeRevenue {
			// Revenue is credit-normal; debit it to zero.
			if b.Balance > 0 {
				leg.Debit = b.Balance
			} else {
				leg.Credit = -b.Balance
			}
		} else {
			if b.Balance > 0 {
				leg.Credit = b.Balance
			} else {
				leg.Debit = -b.Balance
			}
		}
		legs = append(legs, leg)
		net += b.Balance
	}
	if len(legs) == 0 {
		return nil, nil
	}

	if math.Abs(net) > ledger.BalanceTolerance {
		summaryLeg := ledger.EntryInput{AccountID: summary.ID, Description: "Period close"}
		if accType == accounts.AccountTypeRevenue {
			if net > 0 {
				summaryLeg.Credit = net
			} else {
				summaryLeg.Debit = -net
			}
		} else {
			if net > 0 {
				summaryLeg.Debit = net
			} else {
				summaryLeg.Credit = -net
			}
		}
		legs = append(legs, summaryLeg)
	}

	suffix := "REV"
	if accType == accounts.AccountTypeExpense {
		suffix = "EXP"
	}
	txn, err := s.ledger.CreateTransaction(ctx, ledger.CreateTransactionInput{
		ReferenceNumber: fmt.Sprintf("CLS-%s-%s", input.PeriodEnd.Format("20060102"), suffix),
		Description:     fmt.Sprintf("Closing entry (%s)", accType),
		Date:            input.PeriodEnd,
		Type:            ledger.TypeClosingEntry,
		SourceType:      "ledger.closing",
		SourceID:        uuid.New(),
		ActorID:         input.ActorID,
		Entries:         legs,
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
