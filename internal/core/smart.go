package core

import (
	"math"
	"time"
)

const (
	TrendIncreasing SpendTrend = "increasing"
	TrendDecreasing SpendTrend = "decreasing"
	TrendStable     SpendTrend = "stable"
)

// Trend classification bands: recent spend must move more than 10% against
// the older baseline to leave "stable".
const (
	trendUpFactor   = 1.1
	trendDownFactor = 0.9
)

const (
	// Confidence is clamped to this floor; a single steady month should
	// not read as certainty, nor wild variance as zero signal.
	confidenceFloor = 0.3
	// Confidence when there is no historical spend to measure against.
	confidenceNoData = 0.5
)

// historyMonths is the trailing calendar-month window for every historical
// baseline. The window is anchored at "now", never at the display period:
// changing the display period must not move any historical average.
const historyMonths = 6

type (
	SpendTrend string

	// SmartBudget is one category's trend-based recommendation from the
	// continuous Smart Budgeting Engine.
	SmartBudget struct {
		Category              string
		Allocated             Money
		Spent                 Money
		HistoricalAverage     Money
		Trend                 SpendTrend
		RecommendedBudget     Money
		RecommendedAdjustment Money
		Confidence            float64
		AssignedTo            Assignment
	}
)

// SmartBudgets computes trend-based budget recommendations for every
// tracked category. Transactions are the full history; period scopes only
// the "spent" figure.
func SmartBudgets(txs []Transaction, goals []SavingsGoal, setup *BudgetSetup, period Period, now time.Time) []SmartBudget {
	defaultSplit := setup.DefaultSplit()
	months := TrailingMonths(now, historyMonths)
	savingsNeeded := TotalMonthlyRequired(goals, now).Rand()

	rows := effectiveAllocations(setup)
	out := make([]SmartBudget, 0, len(rows))
	for _, row := range rows {
		history := monthlySpend(txs, row.Category, months, defaultSplit)
		avg := mean(history)

		recent := mean(history[:historyMonths/2])
		older := mean(history[historyMonths/2:])
		trend := TrendStable
		switch {
		case recent > older*trendUpFactor:
			trend = TrendIncreasing
		case recent < older*trendDownFactor:
			trend = TrendDecreasing
		}

		allocated := float64(row.Allocated.Cents)
		recommended := avg
		switch trend {
		case TrendIncreasing:
			recommended = math.Min(avg*1.1, allocated*1.2)
		case TrendDecreasing:
			recommended = math.Max(avg*0.9, allocated*0.8)
		}

		// Savings-goal pressure squeezes discretionary categories.
		if discretionarySmart[row.Category] && savingsNeeded > 0 {
			reduction := math.Min(0.3, savingsNeeded/1000*0.1)
			recommended *= 1 - reduction
		}

		confidence := confidenceNoData
		if avg > 0 {
			confidence = clamp(1-stdDev(history, avg)/avg, confidenceFloor, 1)
		}

		spent := weightedSpend(FilterPeriod(txs, period), row.Category, defaultSplit)
		recommendedM := Money{Cents: roundHalfUp(recommended)}
		out = append(out, SmartBudget{
			Category:              row.Category,
			Allocated:             row.Allocated,
			Spent:                 spent,
			HistoricalAverage:     Money{Cents: roundHalfUp(avg)},
			Trend:                 trend,
			RecommendedBudget:     recommendedM,
			RecommendedAdjustment: recommendedM.Sub(row.Allocated),
			Confidence:            confidence,
			AssignedTo:            row.AssignedTo,
		})
	}
	return out
}

// monthlySpend returns the category's household-weighted spend per month
// window, in cents, matching the window order (most recent first). Zero
// months stay in the series; they are signal, not gaps.
func monthlySpend(txs []Transaction, category string, months []Period, defaultSplit float64) []float64 {
	out := make([]float64, len(months))
	for i, m := range months {
		out[i] = float64(weightedSpend(FilterPeriod(txs, m), category, defaultSplit).Cents)
	}
	return out
}

// weightedSpend sums a category's expenses with personal items in full and
// shared items at self's split share.
func weightedSpend(txs []Transaction, category string, defaultSplit float64) Money {
	var total Money
	for _, t := range txs {
		if t.Type != Expense || t.Category != category {
			continue
		}
		if t.AssignedTo == AssignedShared {
			total = total.Add(t.Amount.Percent(ResolveSplit(t.SplitPercent, defaultSplit)))
		} else {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stdDev(vals []float64, avg float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		d := v - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
