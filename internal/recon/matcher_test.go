package recon

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestReconcileMirrorStatement(t *testing.T) {
	book := []BookTransaction{
		{EntryID: 1, Date: day(3), Amount: 1500},
		{EntryID: 2, Date: day(10), Amount: -400},
		{EntryID: 3, Date: day(20), Amount: -75.25},
	}
	bank := []BankTransaction{
		{Date: day(3), Amount: 1500},
		{Date: day(10), Amount: -400},
		{Date: day(20), Amount: -75.25},
	}
	result := Reconcile(day(31), book, bank, 1024.75)

	if len(result.Matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(result.Matches))
	}
	if len(result.UnmatchedBook) != 0 || len(result.UnmatchedBank) != 0 {
		t.Fatalf("unexpected unmatched items: book %d bank %d", len(result.UnmatchedBook), len(result.UnmatchedBank))
	}
	if result.ReconciledBalance != 1024.75 {
		t.Fatalf("reconciled = %.2f, want 1024.75", result.ReconciledBalance)
	}
	if !result.IsReconciled {
		t.Fatalf("mirror statement should reconcile, variance %.2f", result.Variance)
	}
}

func TestReconcileDateTolerance(t *testing.T) {
	book := []BookTransaction{{EntryID: 1, Date: day(5), Amount: 100}}

	// Two days apart matches; three does not.
	result := Reconcile(day(31), book, []BankTransaction{{Date: day(7), Amount: 100}}, 100)
	if len(result.Matches) != 1 {
		t.Fatalf("two-day gap should match, got %d matches", len(result.Matches))
	}

	result = Reconcile(day(31), book, []BankTransaction{{Date: day(8), Amount: 100}}, 100)
	if len(result.Matches) != 0 {
		t.Fatal("three-day gap should not match")
	}
}

func TestReconcileAmountTolerance(t *testing.T) {
	book := []BookTransaction{{EntryID: 1, Date: day(5), Amount: 100}}

	result := Reconcile(day(31), book, []BankTransaction{{Date: day(5), Amount: 100.005}}, 100)
	if len(result.Matches) != 1 {
		t.Fatal("sub-cent difference should match")
	}

	result = Reconcile(day(31), book, []BankTransaction{{Date: day(5), Amount: 100.02}}, 100)
	if len(result.Matches) != 0 {
		t.Fatal("two-cent difference should not match")
	}
}

func TestReconcileOutstandingItems(t *testing.T) {
	book := []BookTransaction{
		{EntryID: 1, Date: day(3), Amount: 1000},  // matched
		{EntryID: 2, Date: day(28), Amount: 500},  // deposit in transit
		{EntryID: 3, Date: day(29), Amount: -200}, // outstanding check
	}
	bank := []BankTransaction{
		{Date: day(3), Amount: 1000},
		{Date: day(15), Amount: -30}, // bank fee not yet booked
	}
	result := Reconcile(day(31), book, bank, 970)

	if result.BookBalance != 1300 {
		t.Fatalf("book balance = %.2f, want 1300", result.BookBalance)
	}
	if result.TotalOutstandingDeposits != 500 {
		t.Fatalf("outstanding deposits = %.2f, want 500", result.TotalOutstandingDeposits)
	}
	if result.TotalOutstandingChecks != 200 {
		t.Fatalf("outstanding checks = %.2f, want 200", result.TotalOutstandingChecks)
	}
	// 1300 + 500 - 200 = 1600 reconciled against 970 on the statement.
	if result.ReconciledBalance != 1600 {
		t.Fatalf("reconciled = %.2f, want 1600", result.ReconciledBalance)
	}
	if result.IsReconciled {
		t.Fatal("should not reconcile with a missing bank fee")
	}
	if result.Variance != -630 {
		t.Fatalf("variance = %.2f, want -630", result.Variance)
	}
	if len(result.UnmatchedBank) != 1 {
		t.Fatalf("unmatched bank = %d, want 1", len(result.UnmatchedBank))
	}
}

func TestReconcileGreedyPairsEachBankLineOnce(t *testing.T) {
	// Two identical book movements, one bank line: only one pairs.
	book := []BookTransaction{
		{EntryID: 1, Date: day(5), Amount: 100},
		{EntryID: 2, Date: day(5), Amount: 100},
	}
	bank := []BankTransaction{{Date: day(5), Amount: 100}}
	result := Reconcile(day(31), book, bank, 100)

	if len(result.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(result.Matches))
	}
	if len(result.OutstandingDeposits) != 1 {
		t.Fatalf("outstanding deposits = %d, want 1", len(result.OutstandingDeposits))
	}
}

func TestReconcileEmptyBook(t *testing.T) {
	result := Reconcile(day(31), nil, []BankTransaction{{Date: day(5), Amount: 50}}, 50)
	if result.BookBalance != 0 || result.ReconciledBalance != 0 {
		t.Fatalf("empty book should yield zero balances, got %.2f/%.2f", result.BookBalance, result.ReconciledBalance)
	}
	if result.IsReconciled {
		t.Fatal("unexplained bank line should not reconcile")
	}
}
