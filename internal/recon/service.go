package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
)

// ErrNoBankStatement occurs when the bank side of the reconciliation is
// missing.
var ErrNoBankStatement = errors.New("recon: bank statement required")

// StatementPort reads the book side from committed ledger state.
type StatementPort interface {
	AccountStatement(ctx context.Context, accountID int64, upTo time.Time) ([]ledger.StatementLine, error)
}

// AccountsPort resolves the variance-adjustment account lazily.
type AccountsPort interface {
	FindOrCreate(ctx context.Context, spec accounts.Spec) (accounts.Account, error)
}

// Input is one reconciliation request. Bank transactions come from outside
// the system, usually a parsed statement file.
type Input struct {
	AccountID         int64
	StatementDate     time.Time
	BankEndingBalance float64
	BankTransactions  []BankTransaction
	ActorID           int64
}

// Report pairs the matcher result with a proposed correction. The proposal
// is never posted here; the caller reviews it and submits it through the
// ledger like any other entry.
type Report struct {
	Result             Result                         `json:"result"`
	ProposedAdjustment *ledger.CreateTransactionInput `json:"proposed_adjustment,omitempty"`
}

// Service runs bank reconciliations. It only reads the ledger.
type Service struct {
	statements StatementPort
	accounts   AccountsPort
	logger     *slog.Logger
}

func NewService(statements StatementPort, accountsPort AccountsPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{statements: statements, accounts: accountsPort, logger: logger}
}

// Reconcile matches book movements up to the statement date against the
// supplied bank lines. When the balances disagree it proposes a single
// variance adjustment sized to the residual.
func (s *Service) Reconcile(ctx context.Context, input Input) (Report, error) {
	if input.AccountID == 0 || input.StatementDate.IsZero() {
		return Report{}, errors.New("recon: account and statement date required")
	}
	if len(input.BankTransactions) == 0 {
		return Report{}, ErrNoBankStatement
	}

	lines, err := s.statements.AccountStatement(ctx, input.AccountID, input.StatementDate)
	if err != nil {
		return Report{}, err
	}
	book := make([]BookTransaction, 0, len(lines))
	for _, l := range lines {
		book = append(book, BookTransaction{
			TransactionID: l.TransactionID,
			EntryID:       l.EntryID,
			Reference:     l.ReferenceNumber,
			Date:          l.Date,
			Amount:        l.Amount(),
			Description:   l.Description,
		})
	}

	report := Report{Result: Reconcile(input.StatementDate, book, input.BankTransactions, input.BankEndingBalance)}
	if report.Result.IsReconciled {
		return report, nil
	}

	s.logger.Warn("reconciliation variance",
		slog.Int64("account_id", input.AccountID),
		slog.Float64("variance", report.Result.Variance))
	proposal, err := s.proposeAdjustment(ctx, input, report.Result.Variance)
	if err != nil {
		return Report{}, err
	}
	report.ProposedAdjustment = proposal
	return report, nil
}

// proposeAdjustment drafts a bank-adjustment entry moving the residual
// between the reconciled account and miscellaneous expense.
func (s *Service) proposeAdjustment(ctx context.Context, input Input, variance float64) (*ledger.CreateTransactionInput, error) {
	misc, err := s.accounts.FindOrCreate(ctx, accounts.SpecMiscExpense)
	if err != nil {
		return nil, err
	}
	proposal := &ledger.CreateTransactionInput{
		ReferenceNumber:  fmt.Sprintf("RECON-%d-%s", input.AccountID, input.StatementDate.Format("20060102")),
		Description:      "Bank reconciliation variance adjustment",
		Date:             input.StatementDate,
		Type:             ledger.TypeBankAdjustment,
		SourceType:       "recon.adjustment",
		SourceID:         uuid.New(),
		ActorID:          input.ActorID,
		RequiresApproval: true,
	}
	if variance > 0 {
		// Bank shows more than the books; recognise the difference on the
		// account and relieve miscellaneous expense.
		proposal.Entries = []ledger.EntryInput{
			{AccountID: input.AccountID, Debit: variance, Description: "Reconciliation variance"},
			{AccountID: misc.ID, Credit: variance, Description: "Reconciliation variance"},
		}
	} else {
		proposal.Entries = []ledger.EntryInput{
			{AccountID: misc.ID, Debit: -variance, Description: "Reconciliation variance"},
			{AccountID: input.AccountID, Credit: -variance, Description: "Reconciliation variance"},
		}
	}
	return proposal, nil
}
