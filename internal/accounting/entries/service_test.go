package entries

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
	"github.com/aurum-erp/aurum-erp/internal/accounting/tax"
)

// fakeLedger records submitted inputs and fabricates stored transactions
// without touching a database.
type fakeLedger struct {
	created []ledger.CreateTransactionInput
	stored  map[int64]ledger.Transaction
	failRef map[string]error
	nextID  int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{stored: make(map[int64]ledger.Transaction), failRef: make(map[string]error), nextID: 1}
}

func (f *fakeLedger) CreateTransaction(_ context.Context, input ledger.CreateTransactionInput) (ledger.Transaction, error) {
	if err := input.Validate(); err != nil {
		return ledger.Transaction{}, err
	}
	if err, ok := f.failRef[input.ReferenceNumber]; ok {
		return ledger.Transaction{}, err
	}
	f.created = append(f.created, input)
	txn := ledger.Transaction{
		ID:              f.nextID,
		ReferenceNumber: input.ReferenceNumber,
		Description:     input.Description,
		Date:            input.Date,
		Type:            input.Type,
		CreatedBy:       input.ActorID,
	}
	f.nextID++
	for _, e := range input.Entries {
		txn.Entries = append(txn.Entries, ledger.TransactionEntry{
			AccountID:      e.AccountID,
			Debit:          e.Debit,
			Credit:         e.Credit,
			OriginalDebit:  e.Debit,
			OriginalCredit: e.Credit,
			Currency:       e.Currency,
			ExchangeRate:   1,
			Description:    e.Description,
			Metadata:       e.Metadata,
		})
	}
	if input.RequiresApproval {
		txn.ApprovalStatus = ledger.ApprovalPending
	} else {
		txn.ApprovalStatus = ledger.ApprovalApproved
	}
	f.stored[txn.ID] = txn
	return txn, nil
}

func (f *fakeLedger) GetTransaction(_ context.Context, id int64) (ledger.Transaction, error) {
	txn, ok := f.stored[id]
	if !ok {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}
	return txn, nil
}

type fakeAccounts struct {
	byCode map[string]accounts.Account
	nextID int64
}

func (f *fakeAccounts) FindOrCreate(_ context.Context, spec accounts.Spec) (accounts.Account, error) {
	if f.byCode == nil {
		f.byCode = make(map[string]accounts.Account)
		f.nextID = 100
	}
	if acc, ok := f.byCode[spec.Code]; ok {
		return acc, nil
	}
	acc := accounts.Account{ID: f.nextID, Code: spec.Code, Name: spec.Name, Type: spec.Type, Subtype: spec.Subtype, IsActive: true}
	f.nextID++
	f.byCode[spec.Code] = acc
	return acc, nil
}

type fakeBalances struct {
	balances []reports.AccountPeriodBalance
}

func (f *fakeBalances) PeriodBalances(_ context.Context, _, _ time.Time) ([]reports.AccountPeriodBalance, error) {
	return f.balances, nil
}

func newEntriesService(l *fakeLedger, b *fakeBalances, rates tax.StaticRates) *Service {
	return NewService(l, &fakeAccounts{}, b, tax.NewService(rates), nil)
}

func baseInput(ref string) ledger.CreateTransactionInput {
	return ledger.CreateTransactionInput{
		ReferenceNumber: ref,
		Description:     "test entry",
		Date:            time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ActorID:         3,
		Entries: []ledger.EntryInput{
			{AccountID: 1, Debit: 200},
			{AccountID: 2, Credit: 200},
		},
	}
}

func TestPostAdvancedTaxLines(t *testing.T) {
	fl := newFakeLedger()
	svc := newEntriesService(fl, nil, tax.StaticRates{"VAT11": 0.11})

	input := AdvancedEntryInput{
		CreateTransactionInput: baseInput("JE-100"),
		TaxLines: []TaxLineInput{
			{TaxCode: "VAT11", TaxableAmount: 200, DebitAccountID: 5, CreditAccountID: 6, Description: "VAT on sale"},
		},
	}
	txn, err := svc.PostAdvanced(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, txn.Entries, 4)
	require.Equal(t, 22.0, txn.Entries[2].Debit)
	require.Equal(t, 22.0, txn.Entries[3].Credit)
	require.Equal(t, "VAT11", txn.Entries[2].Metadata["tax_code"])
	require.True(t, ledger.Balanced(txn.Entries))
}

func TestPostAdvancedUnknownTaxCode(t *testing.T) {
	fl := newFakeLedger()
	svc := newEntriesService(fl, nil, tax.StaticRates{})

	input := AdvancedEntryInput{
		CreateTransactionInput: baseInput("JE-101"),
		TaxLines:               []TaxLineInput{{TaxCode: "NOPE", TaxableAmount: 100, DebitAccountID: 5, CreditAccountID: 6}},
	}
	_, err := svc.PostAdvanced(context.Background(), input)
	require.ErrorIs(t, err, ErrTaxCalculation)
	require.Empty(t, fl.created)
}

func TestPostAdvancedZeroTaxSkipped(t *testing.T) {
	fl := newFakeLedger()
	svc := newEntriesService(fl, nil, tax.StaticRates{"EXEMPT": 0})

	input := AdvancedEntryInput{
		CreateTransactionInput: baseInput("JE-102"),
		TaxLines:               []TaxLineInput{{TaxCode: "EXEMPT", TaxableAmount: 500, DebitAccountID: 5, CreditAccountID: 6}},
	}
	txn, err := svc.PostAdvanced(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, txn.Entries, 2)
}

func TestPostAdjustingForcesApproval(t *testing.T) {
	fl := newFakeLedger()
	svc := newEntriesService(fl, nil, nil)

	txn, err := svc.PostAdjusting(context.Background(), AdvancedEntryInput{CreateTransactionInput: baseInput("ADJ-1")})
	require.NoError(t, err)
	require.Equal(t, ledger.TypeAdjustingEntry, txn.Type)
	require.Equal(t, ledger.ApprovalPending, txn.ApprovalStatus)
}

func TestPostRecurringMonthly(t *testing.T) {
	fl := newFakeLedger()
	svc := newEntriesService(fl, nil, nil)

	result, err := svc.PostRecurring(context.Background(), RecurringEntryInput{
		Template:  baseInput("RENT"),
		StartDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Frequency: FrequencyMonthly,
	})
	require.NoError(t, err)
	require.Len(t, result.Occurrences, 6)
	require.Empty(t, result.Failed())
	require.Equal(t, "RENT-20250131", result.Occurrences[0].Transaction.ReferenceNumber)
	for _, occ := range result.Occurrences {
		require.Equal(t, ledger.TypeRecurringEntry, occ.Transaction.Type)
	}
}

func TestPostRecurringIsolatedFailures(t *testing.T) {
	fl := newFakeLedger()
	fl.failRef["RENT-20250301"] = fmt.Errorf("%w: RENT-20250301", ledger.ErrDuplicateReference)
	svc := newEntriesService(fl, nil, nil)

	result, err := svc.PostRecurring(context.Background(), RecurringEntryInput{
		Template:  baseInput("RENT"),
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Frequency: FrequencyMonthly,
	})
	require.NoError(t, err)
	require.Len(t, result.Occurrences, 4)
	failed := result.Failed()
	require.Len(t, failed, 1)
	require.ErrorIs(t, failed[0].Err, ledger.ErrDuplicateReference)
	// Siblings still posted.
	require.Len(t, fl.created, 3)
}

func TestPostRecurringUnknownFrequency(t *testing.T) {
	svc := newEntriesService(newFakeLedger(), nil, nil)

	_, err := svc.PostRecurring(context.Background(), RecurringEntryInput{
		Template:  baseInput("X"),
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Frequency: Frequency("FORTNIGHTLY"),
	})
	require.ErrorIs(t, err, ErrUnknownFrequency)
}

func TestReverseSwapsSides(t *testing.T) {
	fl := newFakeLedger()
	svc := newEntriesService(fl, nil, nil)

	original, err := fl.CreateTransaction(context.Background(), baseInput("JE-200"))
	require.NoError(t, err)

	rev, err := svc.Reverse(context.Background(), ReverseInput{TransactionID: original.ID, ActorID: 3})
	require.NoError(t, err)
	require.Equal(t, "REV-JE-200", rev.ReferenceNumber)
	require.Equal(t, original.Entries[0].Debit, rev.Entries[0].Credit)
	require.Equal(t, original.Entries[1].Credit, rev.Entries[1].Debit)

	// Reversing the reversal restores the original orientation.
	back, err := svc.Reverse(context.Background(), ReverseInput{TransactionID: rev.ID, ActorID: 3})
	require.NoError(t, err)
	require.Equal(t, "REV-REV-JE-200", back.ReferenceNumber)
	require.Equal(t, original.Entries[0].Debit, back.Entries[0].Debit)
	require.Equal(t, original.Entries[1].Credit, back.Entries[1].Credit)
}

func TestReverseNotFound(t *testing.T) {
	svc := newEntriesService(newFakeLedger(), nil, nil)

	_, err := svc.Reverse(context.Background(), ReverseInput{TransactionID: 404, ActorID: 3})
	require.True(t, errors.Is(err, ledger.ErrTransactionNotFound))
}

func closingBalances() []reports.AccountPeriodBalance {
	return []reports.AccountPeriodBalance{
		{Account: accounts.Account{ID: 10, Code: "4000", Type: accounts.AccountTypeRevenue, IsActive: true}, Balance: 900},
		{Account: accounts.Account{ID: 11, Code: "4100", Type: accounts.AccountTypeRevenue, IsActive: true}, Balance: 100},
		{Account: accounts.Account{ID: 20, Code: "6000", Type: accounts.AccountTypeExpense, IsActive: true}, Balance: 600},
		{Account: accounts.Account{ID: 1, Code: "1000", Type: accounts.AccountTypeAsset, IsActive: true}, Balance: 400},
	}
}

func TestGenerateClosing(t *testing.T) {
	fl := newFakeLedger()
	svc := newEntriesService(fl, &fakeBalances{balances: closingBalances()}, nil)

	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	result, err := svc.GenerateClosing(context.Background(), ClosingInput{
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   end,
		ActorID:     3,
	})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.NotNil(t, result.Revenue)
	require.NotNil(t, result.Expense)

	require.Equal(t, "CLS-20251231-REV", result.Revenue.ReferenceNumber)
	require.Equal(t, ledger.TypeClosingEntry, result.Revenue.Type)
	require.Len(t, result.Revenue.Entries, 3)
	require.Equal(t, 900.0, result.Revenue.Entries[0].Debit)
	require.Equal(t, 100.0, result.Revenue.Entries[1].Debit)
	require.Equal(t, 1000.0, result.Revenue.Entries[2].Credit)
	require.True(t, ledger.Balanced(result.Revenue.Entries))

	require.Equal(t, "CLS-20251231-EXP", result.Expense.ReferenceNumber)
	require.Len(t, result.Expense.Entries, 2)
	require.Equal(t, 600.0, result.Expense.Entries[0].Credit)
	require.Equal(t, 600.0, result.Expense.Entries[1].Debit)
}

func TestGenerateClosingSkipsZeroBalances(t *testing.T) {
	fl := newFakeLedger()
	balances := []reports.AccountPeriodBalance{
		{Account: accounts.Account{ID: 10, Type: accounts.AccountTypeRevenue}, Balance: 0.004},
		{Account: accounts.Account{ID: 20, Type: accounts.AccountTypeExpense}, Balance: 150},
	}
	svc := newEntriesService(fl, &fakeBalances{balances: balances}, nil)

	result, err := svc.GenerateClosing(context.Background(), ClosingInput{
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		ActorID:     3,
	})
	require.NoError(t, err)
	require.Nil(t, result.Revenue)
	require.NotNil(t, result.Expense)
}

func TestGenerateClosingSelfBalancingGroup(t *testing.T) {
	fl := newFakeLedger()
	// Two revenue accounts netting to zero: no summary leg needed.
	balances := []reports.AccountPeriodBalance{
		{Account: accounts.Account{ID: 10, Type: accounts.AccountTypeRevenue}, Balance: 500},
		{Account: accounts.Account{ID: 11, Type: accounts.AccountTypeRevenue}, Balance: -500},
	}
	svc := newEntriesService(fl, &fakeBalances{balances: balances}, nil)

	result, err := svc.GenerateClosing(context.Background(), ClosingInput{
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		ActorID:     3,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Revenue)
	require.Len(t, result.Revenue.Entries, 2)
	require.True(t, ledger.Balanced(result.Revenue.Entries))
}
