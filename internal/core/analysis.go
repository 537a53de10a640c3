package core

const (
	VarianceOver    VarianceTrend = "over"
	VarianceUnder   VarianceTrend = "under"
	VarianceOnTrack VarianceTrend = "on-track"
)

// A category is over or under budget once its variance exceeds 10% of the
// allocation in either direction.
const varianceBandPct = 10.0

type (
	VarianceTrend string

	// BudgetAnalysis is one category's variance/impact row, composed
	// from the Smart Budgeting Engine output and the savings goals.
	BudgetAnalysis struct {
		Category          string
		Actual            Money
		Budgeted          Money
		Variance          Money
		VariancePct       float64
		HistoricalAverage Money
		RecommendedBudget Money
		Trend             VarianceTrend
		ImpactOnGoals     float64
		AssignedTo        Assignment
	}
)

// ComposeAnalysis derives variance rows from smart budgets. Zero
// allocations and absent savings goals yield zero percentages, never
// NaN or infinity.
func ComposeAnalysis(budgets []SmartBudget, goals []SavingsGoal) []BudgetAnalysis {
	totalContribution := TotalMonthlyContribution(goals)
	out := make([]BudgetAnalysis, 0, len(budgets))
	for _, b := range budgets {
		variance := b.Spent.Sub(b.Allocated)

		var variancePct float64
		if b.Allocated.Cents != 0 {
			variancePct = float64(variance.Cents) / float64(b.Allocated.Cents) * 100
		}

		trend := VarianceOnTrack
		switch {
		case variancePct > varianceBandPct:
			trend = VarianceOver
		case variancePct < -varianceBandPct:
			trend = VarianceUnder
		}

		var impact float64
		if variance.Cents > 0 && totalContribution.Cents > 0 {
			impact = float64(variance.Cents) / float64(totalContribution.Cents) * 100
		}

		out = append(out, BudgetAnalysis{
			Category:          b.Category,
			Actual:            b.Spent,
			Budgeted:          b.Allocated,
			Variance:          variance,
			VariancePct:       variancePct,
			HistoricalAverage: b.HistoricalAverage,
			RecommendedBudget: b.RecommendedBudget,
			Trend:             trend,
			ImpactOnGoals:     impact,
			AssignedTo:        b.AssignedTo,
		})
	}
	return out
}
