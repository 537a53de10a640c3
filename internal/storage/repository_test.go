package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"begroting/internal/core"
	"begroting/internal/log"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTxs() []core.Transaction {
	split := 60.0
	return []core.Transaction{
		{
			ID:            "t1",
			Date:          time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			Description:   "woolies",
			Category:      "Groceries",
			Amount:        core.Money{Cents: 1000_00},
			Type:          core.Expense,
			Account:       "Credit Card",
			AssignedTo:    core.AssignedShared,
			SplitPercent:  &split,
			PaymentMethod: core.CreditCard,
		},
		{
			ID:            "t2",
			Date:          time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
			Description:   "salary",
			Category:      "Income",
			Amount:        core.Money{Cents: 45000_00},
			Type:          core.Income,
			AssignedTo:    core.AssignedSelf,
			PaymentMethod: core.Cash,
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	fetchedAt := time.Date(2025, 6, 26, 8, 0, 0, 0, time.UTC)

	if err := repo.ReplaceSnapshot(ctx, sampleTxs(), fetchedAt); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}

	got, at, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if !at.Equal(fetchedAt) {
		t.Fatalf("fetched at = %v, want %v", at, fetchedAt)
	}

	tx := got[0]
	if tx.ID != "t1" || tx.Amount.Cents != 1000_00 || tx.PaymentMethod != core.CreditCard {
		t.Fatalf("unexpected first transaction: %+v", tx)
	}
	if tx.SplitPercent == nil || *tx.SplitPercent != 60 {
		t.Fatalf("split not preserved: %v", tx.SplitPercent)
	}
	if got[1].SplitPercent != nil {
		t.Fatal("nil split must stay nil")
	}
}

func TestReplaceSnapshotOverwrites(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.ReplaceSnapshot(ctx, sampleTxs(), time.Now()); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}
	if err := repo.ReplaceSnapshot(ctx, sampleTxs()[:1], time.Now()); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}

	got, _, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d transactions after overwrite, want 1", len(got))
	}
}

func TestSetupRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.LoadSetup(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadSetup before save = %v, want ErrNotFound", err)
	}

	split := 45.0
	setup := &core.BudgetSetup{
		SelfName:            "Anna",
		SpouseName:          "Ben",
		DefaultSplitPercent: 55,
		FixedExpenses: []core.FixedExpense{
			{ID: "f1", Name: "Bond", Amount: core.Money{Cents: 10000_00}, Frequency: core.Monthly,
				AssignedTo: core.AssignedShared, SplitPercent: &split, IsActive: true},
		},
		SelfOpeningBalance: core.Money{Cents: 1234_56},
	}
	if err := repo.SaveSetup(ctx, setup); err != nil {
		t.Fatalf("SaveSetup: %v", err)
	}

	got, err := repo.LoadSetup(ctx)
	if err != nil {
		t.Fatalf("LoadSetup: %v", err)
	}
	if got.SelfName != "Anna" || got.DefaultSplitPercent != 55 {
		t.Fatalf("unexpected setup: %+v", got)
	}
	if len(got.FixedExpenses) != 1 || got.FixedExpenses[0].SplitPercent == nil || *got.FixedExpenses[0].SplitPercent != 45 {
		t.Fatalf("fixed expense not preserved: %+v", got.FixedExpenses)
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	goals, err := repo.LoadGoals(ctx)
	if err != nil || goals != nil {
		t.Fatalf("LoadGoals before save = %v, %v; want nil, nil", goals, err)
	}

	want := []core.SavingsGoal{{
		ID:                  "g1",
		Name:                "Emergency Fund",
		TargetAmount:        core.Money{Cents: 50000_00},
		TargetDate:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MonthlyContribution: core.Money{Cents: 2500_00},
	}}
	if err := repo.SaveGoals(ctx, want); err != nil {
		t.Fatalf("SaveGoals: %v", err)
	}

	got, err := repo.LoadGoals(ctx)
	if err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Emergency Fund" || got[0].TargetAmount.Cents != 50000_00 {
		t.Fatalf("unexpected goals: %+v", got)
	}
}

func TestRecordSettlement(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.RecordSettlement(ctx, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RecordSettlement without setup = %v, want ErrNotFound", err)
	}

	if err := repo.SaveSetup(ctx, &core.BudgetSetup{SelfName: "Anna"}); err != nil {
		t.Fatalf("SaveSetup: %v", err)
	}

	at := time.Date(2025, 6, 26, 12, 0, 0, 0, time.UTC)
	if err := repo.RecordSettlement(ctx, at); err != nil {
		t.Fatalf("RecordSettlement: %v", err)
	}

	got, err := repo.LoadSetup(ctx)
	if err != nil {
		t.Fatalf("LoadSetup: %v", err)
	}
	if got.LastSettlement == nil || !got.LastSettlement.Equal(at) {
		t.Fatalf("last settlement = %v, want %v", got.LastSettlement, at)
	}
	if got.SelfName != "Anna" {
		t.Fatal("settlement must not clobber other setup fields")
	}
}

func TestAPILock(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	locked, err := repo.APILocked(ctx)
	if err != nil || locked {
		t.Fatalf("APILocked default = %v, %v; want false, nil", locked, err)
	}

	if err := repo.SetAPILocked(ctx, true); err != nil {
		t.Fatalf("SetAPILocked: %v", err)
	}
	if locked, _ = repo.APILocked(ctx); !locked {
		t.Fatal("lock flag did not persist")
	}

	if err := repo.SetAPILocked(ctx, false); err != nil {
		t.Fatalf("SetAPILocked: %v", err)
	}
	if locked, _ = repo.APILocked(ctx); locked {
		t.Fatal("unlock did not persist")
	}
}
