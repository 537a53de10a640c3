package core

import (
	"math"
	"time"
)

// GoalStatus is the derived view of one savings goal. Goals are never
// mutated by the pipeline; status is recomputed from the goal and "now".
type GoalStatus struct {
	Goal            SavingsGoal
	MonthsRemaining int
	RequiredMonthly Money
	OnTrack         bool
}

// MonthsRemaining counts 30-day months until the target date, never less
// than one so the required contribution stays finite.
func MonthsRemaining(targetDate, now time.Time) int {
	days := targetDate.Sub(now).Hours() / 24
	months := int(math.Ceil(days / 30))
	if months < 1 {
		return 1
	}
	return months
}

// RequiredMonthly returns the contribution needed per month to reach the
// goal by its target date. Fully funded goals need zero.
func RequiredMonthly(goal SavingsGoal, now time.Time) Money {
	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	if remaining.Cents <= 0 {
		return Money{}
	}
	months := MonthsRemaining(goal.TargetDate, now)
	return Money{Cents: roundHalfUp(float64(remaining.Cents) / float64(months))}
}

// GoalStatuses derives the status of each goal.
func GoalStatuses(goals []SavingsGoal, now time.Time) []GoalStatus {
	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		required := RequiredMonthly(g, now)
		out = append(out, GoalStatus{
			Goal:            g,
			MonthsRemaining: MonthsRemaining(g.TargetDate, now),
			RequiredMonthly: required,
			OnTrack:         g.MonthlyContribution.Cents >= required.Cents,
		})
	}
	return out
}

// TotalMonthlyContribution sums the configured contributions across goals.
func TotalMonthlyContribution(goals []SavingsGoal) Money {
	var total Money
	for _, g := range goals {
		total = total.Add(g.MonthlyContribution)
	}
	return total
}

// TotalMonthlyRequired sums the outstanding required contributions across
// goals. The Smart Budgeting Engine uses this as savings pressure on
// discretionary categories.
func TotalMonthlyRequired(goals []SavingsGoal, now time.Time) Money {
	var total Money
	for _, g := range goals {
		total = total.Add(RequiredMonthly(g, now))
	}
	return total
}
