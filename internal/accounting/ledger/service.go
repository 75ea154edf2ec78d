package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/fx"
	"github.com/aurum-erp/aurum-erp/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Invalidator bumps derived-report caches after a committed mutation.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service owns Transaction and TransactionEntry mutation. Every write path
// goes through CreateTransaction; there is no partial persistence.
type Service struct {
	repo        Repository
	converter   *fx.Converter
	audit       AuditPort
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, converter *fx.Converter, audit AuditPort, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, converter: converter, audit: audit, invalidator: invalidator, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// BaseCurrency returns the currency amounts are stored in.
func (s *Service) BaseCurrency() string {
	return s.converter.BaseCurrency()
}

// CreateTransaction validates, converts, and persists a transaction as one
// atomic unit. All checks run before any write; the stored entries are
// re-verified after the write and a mismatch aborts the whole unit.
func (s *Service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (Transaction, error) {
	if err := input.Validate(); err != nil {
		return Transaction{}, err
	}

	entries, err := s.convertEntries(ctx, input.Entries)
	if err != nil {
		return Transaction{}, err
	}

	var totalDebit, totalCredit, totalAmount float64
	for _, e := range entries {
		totalDebit += e.Debit
		totalCredit += e.Credit
		totalAmount += math.Max(e.Debit, e.Credit)
	}
	if math.Abs(totalDebit-totalCredit) > BalanceTolerance {
		return Transaction{}, fmt.Errorf("%w after conversion: debits %.2f credits %.2f", ErrUnbalanced, totalDebit, totalCredit)
	}
	// The same economic value appears once on each side; halving yields the
	// single-sided value.
	totalAmount = round2(totalAmount / 2)

	txnType := input.Type
	if txnType == "" {
		txnType = TypeJournalEntry
	}
	txn := Transaction{
		ReferenceNumber:  input.ReferenceNumber,
		Description:      input.Description,
		DescriptionLocal: input.DescriptionLocal,
		Date:             input.Date,
		Type:             txnType,
		SourceType:       input.SourceType,
		SourceID:         input.SourceID,
		TotalAmount:      totalAmount,
		Currency:         s.converter.BaseCurrency(),
		ExchangeRate:     1,
		CostCenterID:     input.CostCenterID,
		Tags:             input.Tags,
		CreatedBy:        input.ActorID,
	}
	if input.RequiresApproval {
		txn.ApprovalStatus = ApprovalPending
	} else {
		now := s.now()
		actor := input.ActorID
		txn.ApprovalStatus = ApprovalApproved
		txn.ApprovedBy = &actor
		txn.ApprovedAt = &now
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		accountIDs := make([]int64, 0, len(entries))
		for _, e := range entries {
			accountIDs = append(accountIDs, e.AccountID)
		}
		found, err := tx.GetAccounts(ctx, accountIDs)
		if err != nil {
			return err
		}
		for _, e := range entries {
			acc, ok := found[e.AccountID]
			if !ok {
				return fmt.Errorf("%w: id %d", ErrAccountMissing, e.AccountID)
			}
			if !acc.IsActive {
				return fmt.Errorf("%w: %s", ErrAccountInactive, acc.Code)
			}
		}

		inserted, err := tx.InsertTransaction(ctx, txn)
		if err != nil {
			return err
		}
		if err := tx.InsertEntries(ctx, inserted.ID, entries); err != nil {
			return err
		}
		for _, id := range accountIDs {
			if err := tx.RecomputeBalance(ctx, id); err != nil {
				return err
			}
		}

		stored, err := tx.GetEntries(ctx, inserted.ID)
		if err != nil {
			return err
		}
		if !Balanced(stored) {
			s.logger.Error("post-write balance re-check failed",
				slog.String("reference", inserted.ReferenceNumber),
				slog.Int64("transaction_id", inserted.ID))
			return ErrConsistency
		}
		inserted.Entries = stored
		txn = inserted
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "ledger.transaction.create",
			Entity:   "transaction",
			EntityID: fmt.Sprintf("%d", txn.ID),
			New: map[string]any{
				"reference":    txn.ReferenceNumber,
				"type":         string(txn.Type),
				"total_amount": txn.TotalAmount,
			},
			At: s.now(),
		})
	}
	if s.invalidator != nil {
		_ = s.invalidator.Bump(ctx)
	}
	return txn, nil
}

// GetTransaction loads a transaction with its entries.
func (s *Service) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	txn, entries, err := s.repo.GetTransactionWithEntries(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	txn.Entries = entries
	return txn, nil
}

// AccountBalanceAsOf recomputes the directed activity of one account from
// entry history up to the given date.
func (s *Service) AccountBalanceAsOf(ctx context.Context, accountID int64, asOf time.Time) (debit, credit float64, err error) {
	entries, err := s.repo.EntriesForAccount(ctx, accountID, asOf)
	if err != nil {
		return 0, 0, err
	}
	for _, e := range entries {
		debit += e.Debit
		credit += e.Credit
	}
	return debit, credit, nil
}

// AccountStatement returns the dated movements on one account up to a
// date, oldest first.
func (s *Service) AccountStatement(ctx context.Context, accountID int64, upTo time.Time) ([]StatementLine, error) {
	return s.repo.AccountStatement(ctx, accountID, upTo)
}

func (s *Service) convertEntries(ctx context.Context, inputs []EntryInput) ([]TransactionEntry, error) {
	base := s.converter.BaseCurrency()
	out := make([]TransactionEntry, 0, len(inputs))
	for _, in := range inputs {
		currency := in.Currency
		if currency == "" {
			currency = base
		}
		entry := TransactionEntry{
			AccountID:      in.AccountID,
			OriginalDebit:  in.Debit,
			OriginalCredit: in.Credit,
			Currency:       currency,
			Description:    in.Description,
			Metadata:       in.Metadata,
		}
		debit, rate, err := s.converter.Convert(ctx, in.Debit, currency)
		if err != nil {
			return nil, fmt.Errorf("ledger: convert debit: %w", err)
		}
		credit, _, err := s.converter.Convert(ctx, in.Credit, currency)
		if err != nil {
			return nil, fmt.Errorf("ledger: convert credit: %w", err)
		}
		entry.Debit = debit
		entry.Credit = credit
		entry.ExchangeRate = rate
		out = append(out, entry)
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
