package core

import (
	"sort"
	"time"
)

// Advisor thresholds: a recommendation is only surfaced when it moves the
// budget by more than 5% or R100.
const (
	advisorMinChangePct  = 5.0
	advisorMinChangeRand = 100.0
)

// Recommendation is one row of the one-shot advisor output. The advisor is
// a deliberately simpler heuristic than the Smart Budgeting Engine: flat
// buffers per category class plus a seasonal adjustment, independently
// parameterized. The two algorithms are not meant to converge.
type Recommendation struct {
	Category          string
	CurrentBudget     Money
	RecommendedBudget Money
	SixMonthAverage   Money
	Confidence        float64
	Reasoning         string
	AssignedTo        Assignment
	Change            Money
	ChangePct         float64
}

// Recommendations computes the one-shot advisor output. Unlike the smart
// engine's trailing windows, the advisor's six monthly windows include the
// current month, and categories with no spend in the window are skipped
// rather than recommended at zero.
func Recommendations(txs []Transaction, setup *BudgetSetup, now time.Time) []Recommendation {
	defaultSplit := setup.DefaultSplit()
	months := RecentMonths(now, historyMonths)
	cutoff := now.AddDate(0, -historyMonths, 0)

	out := make([]Recommendation, 0, len(DefaultAllocations))
	for _, category := range TrackedCategories() {
		if !hasSpendSince(txs, category, cutoff) {
			continue
		}
		history := monthlySpend(txs, category, months, defaultSplit)
		avg := mean(history)

		cov := 1.0
		if avg > 0 {
			cov = stdDev(history, avg) / avg
		}
		confidence := clamp(1-cov, confidenceFloor, 1)

		current := manualAllocation(setup, category)

		var recommended float64
		var reasoning string
		switch {
		case essentialAdvisor[category]:
			recommended = avg * 1.1
			reasoning = "Essential category with 10% safety buffer added"
		case discretionaryAdvisor[category]:
			recommended = avg * 0.95
			reasoning = "Discretionary spending with 5% reduction for savings optimization"
		default:
			recommended = avg * 1.05
			reasoning = "Based on 6-month average with 5% buffer"
		}

		// Electricity runs higher over the South African summer.
		if category == "Electricity" && isSummerMonth(now.Month()) {
			recommended *= 1.2
			reasoning += " + 20% summer adjustment"
		}

		recommendedM := roundToRand(Money{Cents: roundHalfUp(recommended)})
		change := recommendedM.Sub(current)
		changePct := 0.0
		if current.Cents > 0 {
			changePct = float64(change.Cents) / float64(current.Cents) * 100
		}
		if abs(changePct) <= advisorMinChangePct && abs(change.Rand()) <= advisorMinChangeRand {
			continue
		}

		assignedTo := AssignedShared
		if selfCategories[category] {
			assignedTo = AssignedSelf
		}

		out = append(out, Recommendation{
			Category:          category,
			CurrentBudget:     current,
			RecommendedBudget: recommendedM,
			SixMonthAverage:   roundToRand(Money{Cents: roundHalfUp(avg)}),
			Confidence:        confidence,
			Reasoning:         reasoning,
			AssignedTo:        assignedTo,
			Change:            change,
			ChangePct:         changePct,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].Change.Cents, out[j].Change.Cents
		if ci < 0 {
			ci = -ci
		}
		if cj < 0 {
			cj = -cj
		}
		return ci > cj
	})
	return out
}

// isSummerMonth mirrors the original month-index test (>=10 or <=2 on a
// zero-based calendar): November through March.
func isSummerMonth(m time.Month) bool {
	return m >= time.November || m <= time.March
}

// manualAllocation returns the active manual budget for a category, zero
// when none is configured. The advisor compares against what the user
// actually set, not the default table.
func manualAllocation(setup *BudgetSetup, category string) Money {
	if setup == nil {
		return Money{}
	}
	for _, b := range setup.ManualBudgets {
		if b.IsActive && b.Category == category {
			return b.Allocated
		}
	}
	return Money{}
}

func hasSpendSince(txs []Transaction, category string, cutoff time.Time) bool {
	for _, t := range txs {
		if t.Type == Expense && t.Category == category && !t.Date.Before(cutoff) {
			return true
		}
	}
	return false
}

// roundToRand rounds to the nearest whole rand.
func roundToRand(m Money) Money {
	return Money{Cents: roundHalfUp(float64(m.Cents)/100) * 100}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
