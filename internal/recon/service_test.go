package recon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
)

type stubStatements struct {
	lines []ledger.StatementLine
}

func (s *stubStatements) AccountStatement(_ context.Context, _ int64, _ time.Time) ([]ledger.StatementLine, error) {
	return s.lines, nil
}

type stubAccounts struct{}

func (stubAccounts) FindOrCreate(_ context.Context, spec accounts.Spec) (accounts.Account, error) {
	return accounts.Account{ID: 77, Code: spec.Code, Name: spec.Name, Type: spec.Type, IsActive: true}, nil
}

func statementLines() []ledger.StatementLine {
	return []ledger.StatementLine{
		{TransactionID: 1, EntryID: 10, ReferenceNumber: "JE-001", Date: day(3), Debit: 1500},
		{TransactionID: 2, EntryID: 20, ReferenceNumber: "JE-002", Date: day(10), Credit: 400},
	}
}

func TestServiceReconcileClean(t *testing.T) {
	svc := NewService(&stubStatements{lines: statementLines()}, stubAccounts{}, nil)

	report, err := svc.Reconcile(context.Background(), Input{
		AccountID:         1,
		StatementDate:     day(31),
		BankEndingBalance: 1100,
		BankTransactions: []BankTransaction{
			{Date: day(3), Amount: 1500},
			{Date: day(10), Amount: -400},
		},
		ActorID: 4,
	})
	require.NoError(t, err)
	require.True(t, report.Result.IsReconciled)
	require.Nil(t, report.ProposedAdjustment)
	require.Equal(t, 1100.0, report.Result.BookBalance)
}

func TestServiceReconcileRequiresStatement(t *testing.T) {
	svc := NewService(&stubStatements{}, stubAccounts{}, nil)

	_, err := svc.Reconcile(context.Background(), Input{AccountID: 1, StatementDate: day(31), ActorID: 4})
	require.ErrorIs(t, err, ErrNoBankStatement)

	_, err = svc.Reconcile(context.Background(), Input{StatementDate: day(31), ActorID: 4})
	require.Error(t, err)
}

func TestServiceProposesAdjustmentBankHigher(t *testing.T) {
	svc := NewService(&stubStatements{lines: statementLines()}, stubAccounts{}, nil)

	report, err := svc.Reconcile(context.Background(), Input{
		AccountID:         1,
		StatementDate:     day(31),
		BankEndingBalance: 1150,
		BankTransactions: []BankTransaction{
			{Date: day(3), Amount: 1500},
			{Date: day(10), Amount: -400},
		},
		ActorID: 4,
	})
	require.NoError(t, err)
	require.False(t, report.Result.IsReconciled)
	require.Equal(t, 50.0, report.Result.Variance)

	proposal := report.ProposedAdjustment
	require.NotNil(t, proposal)
	require.Equal(t, "RECON-1-20250331", proposal.ReferenceNumber)
	require.Equal(t, ledger.TypeBankAdjustment, proposal.Type)
	require.True(t, proposal.RequiresApproval)
	// Bank higher than books: debit the account, credit misc expense.
	require.Equal(t, int64(1), proposal.Entries[0].AccountID)
	require.Equal(t, 50.0, proposal.Entries[0].Debit)
	require.Equal(t, int64(77), proposal.Entries[1].AccountID)
	require.Equal(t, 50.0, proposal.Entries[1].Credit)
	require.NoError(t, proposal.Validate())
}

func TestServiceProposesAdjustmentBankLower(t *testing.T) {
	svc := NewService(&stubStatements{lines: statementLines()}, stubAccounts{}, nil)

	report, err := svc.Reconcile(context.Background(), Input{
		AccountID:         1,
		StatementDate:     day(31),
		BankEndingBalance: 1070,
		BankTransactions: []BankTransaction{
			{Date: day(3), Amount: 1500},
			{Date: day(10), Amount: -400},
		},
		ActorID: 4,
	})
	require.NoError(t, err)
	require.Equal(t, -30.0, report.Result.Variance)

	proposal := report.ProposedAdjustment
	require.NotNil(t, proposal)
	// Bank lower than books: debit misc expense, credit the account.
	require.Equal(t, int64(77), proposal.Entries[0].AccountID)
	require.Equal(t, 30.0, proposal.Entries[0].Debit)
	require.Equal(t, int64(1), proposal.Entries[1].AccountID)
	require.Equal(t, 30.0, proposal.Entries[1].Credit)
	require.NoError(t, proposal.Validate())
}
