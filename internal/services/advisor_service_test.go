package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"begroting/internal/core"
	"begroting/internal/log"
)

func advisorTxs(now time.Time) []core.Transaction {
	var out []core.Transaction
	for i := 0; i < 6; i++ {
		out = append(out, core.Transaction{
			ID:          "a" + string(rune('0'+i)),
			Date:        now.AddDate(0, -i, 0),
			Description: "groceries",
			Category:    "Groceries",
			Amount:      core.Money{Cents: 1000_00},
			Type:        core.Expense,
			AssignedTo:  core.AssignedSelf,
		})
	}
	return out
}

func TestRecommendComputes(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewAdvisorService(0, log.New(log.DefaultConfig()))

	recs, err := svc.Recommend(context.Background(), advisorTxs(now), &core.BudgetSetup{}, now)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected at least one recommendation")
	}
}

func TestRecommendHonorsCancellation(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewAdvisorService(time.Minute, log.New(log.DefaultConfig()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Recommend(ctx, advisorTxs(now), &core.BudgetSetup{}, now)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("cancellation did not abort the delay")
	}
}
