package core

import "time"

type (
	// FinancialSummary aggregates the active period's transactions.
	// Income and expense totals are unsplit: splitting happens only at
	// the per-person breakdown level.
	FinancialSummary struct {
		TotalIncome       Money
		TotalExpenses     Money
		NetIncome         Money
		TotalBudget       Money
		BudgetUsed        Money
		SavingsRate       float64
		TotalSavingsGoals Money
		ProjectedSavings  Money
	}

	// CategoryBudget is one category's budget-vs-spent row.
	CategoryBudget struct {
		Category   string
		Allocated  Money
		Spent      Money
		AssignedTo Assignment
	}

	// PersonSummary is the config-based view of one member: configured
	// income (recurring sources, monthly-normalized), not observed
	// income from transactions. The Bank Balance Projector computes the
	// transaction-based counterpart; the two are distinct concepts.
	PersonSummary struct {
		Person           Person
		Name             string
		ConfiguredIncome Money
		PersonalFixed    Money
		SharedFixed      Money
		TotalFixed       Money
		Net              Money
	}

	// MonthlyTrend is one calendar month's income/expense/net row.
	MonthlyTrend struct {
		Month    string
		Income   Money
		Expenses Money
		Net      Money
	}
)

// Summarize aggregates transactions already filtered to the active period.
// A nil setup is a valid state and degrades to the default allocation
// table.
func Summarize(txs []Transaction, goals []SavingsGoal, setup *BudgetSetup) FinancialSummary {
	var income, expenses Money
	for _, t := range txs {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expenses = expenses.Add(t.Amount)
		}
	}

	var totalBudget Money
	for _, b := range effectiveAllocations(setup) {
		totalBudget = totalBudget.Add(b.Allocated)
	}

	var savingsRate float64
	if income.Cents > 0 {
		savingsRate = float64(income.Cents-expenses.Cents) / float64(income.Cents) * 100
	}

	var totalGoals Money
	for _, g := range goals {
		totalGoals = totalGoals.Add(g.TargetAmount)
	}

	projected := income.Sub(expenses)
	if projected.Cents < 0 {
		projected = Money{}
	}

	return FinancialSummary{
		TotalIncome:       income,
		TotalExpenses:     expenses,
		NetIncome:         income.Sub(expenses),
		TotalBudget:       totalBudget,
		BudgetUsed:        expenses,
		SavingsRate:       savingsRate,
		TotalSavingsGoals: totalGoals,
		ProjectedSavings:  projected,
	}
}

// CategoryBudgets computes budget-vs-spent per category for transactions
// already filtered to the active period. Active manual budgets supersede
// the default allocation table.
//
// Spent is the household-weighted amount: personal items count in full,
// shared items count self's split share (explicit split, else household
// default, else the fixed fallback).
func CategoryBudgets(txs []Transaction, setup *BudgetSetup) []CategoryBudget {
	defaultSplit := setup.DefaultSplit()
	rows := effectiveAllocations(setup)
	out := make([]CategoryBudget, 0, len(rows))
	for _, row := range rows {
		var spent Money
		for _, t := range txs {
			if t.Type != Expense || t.Category != row.Category {
				continue
			}
			if t.AssignedTo == AssignedShared {
				spent = spent.Add(t.Amount.Percent(ResolveSplit(t.SplitPercent, defaultSplit)))
			} else {
				spent = spent.Add(t.Amount)
			}
		}
		out = append(out, CategoryBudget{
			Category:   row.Category,
			Allocated:  row.Allocated,
			Spent:      spent,
			AssignedTo: row.AssignedTo,
		})
	}
	return out
}

type allocationRow struct {
	Category   string
	Allocated  Money
	AssignedTo Assignment
}

// effectiveAllocations merges active manual budgets over the default table.
func effectiveAllocations(setup *BudgetSetup) []allocationRow {
	manual := map[string]ManualBudget{}
	if setup != nil {
		for _, b := range setup.ManualBudgets {
			if b.IsActive {
				manual[b.Category] = b
			}
		}
	}
	rows := make([]allocationRow, 0, len(DefaultAllocations)+len(manual))
	seen := map[string]bool{}
	for _, d := range DefaultAllocations {
		if b, ok := manual[d.Category]; ok {
			rows = append(rows, allocationRow{Category: d.Category, Allocated: b.Allocated, AssignedTo: b.AssignedTo})
		} else {
			rows = append(rows, allocationRow{Category: d.Category, Allocated: d.Allocated, AssignedTo: CategoryAssignment(d.Category)})
		}
		seen[d.Category] = true
	}
	// Manual budgets for categories outside the default table still count.
	if setup != nil {
		for _, b := range setup.ManualBudgets {
			if b.IsActive && !seen[b.Category] {
				rows = append(rows, allocationRow{Category: b.Category, Allocated: b.Allocated, AssignedTo: b.AssignedTo})
			}
		}
	}
	return rows
}

// PersonSummaries derives both members' config-based summaries. A nil
// setup yields zeroed summaries.
func PersonSummaries(setup *BudgetSetup) (self, spouse PersonSummary) {
	self = personSummary(setup, PersonSelf)
	spouse = personSummary(setup, PersonSpouse)
	return self, spouse
}

func personSummary(setup *BudgetSetup, person Person) PersonSummary {
	out := PersonSummary{Person: person}
	if setup == nil {
		return out
	}
	if person == PersonSelf {
		out.Name = setup.SelfName
	} else {
		out.Name = setup.SpouseName
	}

	for _, src := range setup.IncomeSources {
		if src.IsActive && src.AssignedTo == Assignment(person) {
			out.ConfiguredIncome = out.ConfiguredIncome.Add(MonthlyAmount(src.Amount, src.Frequency))
		}
	}
	for _, exp := range setup.FixedExpenses {
		if !exp.IsActive {
			continue
		}
		monthly := MonthlyAmount(exp.Amount, exp.Frequency)
		switch exp.AssignedTo {
		case Assignment(person):
			out.PersonalFixed = out.PersonalFixed.Add(monthly)
		case AssignedShared:
			split := ResolveSplit(exp.SplitPercent, setup.DefaultSplit())
			out.SharedFixed = out.SharedFixed.Add(SharedShare(monthly, person, split))
		}
	}
	out.TotalFixed = out.PersonalFixed.Add(out.SharedFixed)
	out.Net = out.ConfiguredIncome.Sub(out.TotalFixed)
	return out
}

// MonthlyTrends derives income/expense/net rows for the n calendar months
// ending with the current one, oldest first.
func MonthlyTrends(txs []Transaction, now time.Time, n int) []MonthlyTrend {
	months := RecentMonths(now, n)
	out := make([]MonthlyTrend, 0, n)
	for i := len(months) - 1; i >= 0; i-- {
		m := months[i]
		var income, expenses Money
		for _, t := range txs {
			if !m.Contains(t.Date) {
				continue
			}
			switch t.Type {
			case Income:
				income = income.Add(t.Amount)
			case Expense:
				expenses = expenses.Add(t.Amount)
			}
		}
		out = append(out, MonthlyTrend{
			Month:    m.Label,
			Income:   income,
			Expenses: expenses,
			Net:      income.Sub(expenses),
		})
	}
	return out
}
