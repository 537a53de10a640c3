package core

import "testing"

func analysisBudget(category string, spent, allocated int64) SmartBudget {
	return SmartBudget{
		Category:          category,
		Spent:             Money{Cents: spent},
		Allocated:         Money{Cents: allocated},
		HistoricalAverage: Money{Cents: spent},
		RecommendedBudget: Money{Cents: allocated},
		AssignedTo:        AssignedShared,
	}
}

func TestComposeAnalysisVarianceBands(t *testing.T) {
	budgets := []SmartBudget{
		analysisBudget("Groceries", 1150_00, 1000_00),
		analysisBudget("Petrol", 850_00, 1000_00),
		analysisBudget("Wine", 1050_00, 1000_00),
	}

	rows := ComposeAnalysis(budgets, nil)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	cases := []struct {
		category string
		variance int64
		pct      float64
		trend    VarianceTrend
	}{
		{"Groceries", 150_00, 15, VarianceOver},
		{"Petrol", -150_00, -15, VarianceUnder},
		{"Wine", 50_00, 5, VarianceOnTrack},
	}
	for i, tc := range cases {
		row := rows[i]
		if row.Category != tc.category {
			t.Fatalf("row %d = %q, want %q", i, row.Category, tc.category)
		}
		if row.Variance.Cents != tc.variance {
			t.Fatalf("%s variance = %d, want %d", tc.category, row.Variance.Cents, tc.variance)
		}
		if row.VariancePct != tc.pct {
			t.Fatalf("%s variance pct = %v, want %v", tc.category, row.VariancePct, tc.pct)
		}
		if row.Trend != tc.trend {
			t.Fatalf("%s trend = %q, want %q", tc.category, row.Trend, tc.trend)
		}
	}
}

func TestComposeAnalysisGuardsDivisions(t *testing.T) {
	rows := ComposeAnalysis([]SmartBudget{analysisBudget("Ad Hoc", 500_00, 0)}, nil)
	if rows[0].VariancePct != 0 {
		t.Fatalf("zero allocation variance pct = %v, want 0", rows[0].VariancePct)
	}
	if rows[0].ImpactOnGoals != 0 {
		t.Fatalf("impact without goals = %v, want 0", rows[0].ImpactOnGoals)
	}
}

func TestComposeAnalysisImpactOnGoals(t *testing.T) {
	goals := []SavingsGoal{{MonthlyContribution: Money{Cents: 500_00}}}

	over := ComposeAnalysis([]SmartBudget{analysisBudget("Groceries", 1150_00, 1000_00)}, goals)
	if over[0].ImpactOnGoals != 30 {
		t.Fatalf("impact = %v, want 30", over[0].ImpactOnGoals)
	}

	under := ComposeAnalysis([]SmartBudget{analysisBudget("Petrol", 850_00, 1000_00)}, goals)
	if under[0].ImpactOnGoals != 0 {
		t.Fatalf("underspend impact = %v, want 0", under[0].ImpactOnGoals)
	}
}
