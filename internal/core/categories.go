package core

// DefaultAllocations is the built-in monthly allocation table (rand), used
// for any category without an active manual budget.
var DefaultAllocations = []CategoryAllocation{
	{Category: "Groceries", Allocated: Money{Cents: 12000_00}},
	{Category: "Electricity", Allocated: Money{Cents: 2500_00}},
	{Category: "Hair/Nails/Beauty", Allocated: Money{Cents: 2000_00}},
	{Category: "Pet Expenses", Allocated: Money{Cents: 1500_00}},
	{Category: "Eating Out", Allocated: Money{Cents: 4000_00}},
	{Category: "Clothing", Allocated: Money{Cents: 3000_00}},
	{Category: "Golf", Allocated: Money{Cents: 2500_00}},
	{Category: "Dischem/Clicks", Allocated: Money{Cents: 2000_00}},
	{Category: "Petrol", Allocated: Money{Cents: 3500_00}},
	{Category: "Gifts", Allocated: Money{Cents: 1500_00}},
	{Category: "Travel", Allocated: Money{Cents: 5000_00}},
	{Category: "Wine", Allocated: Money{Cents: 2000_00}},
	{Category: "Kids", Allocated: Money{Cents: 8000_00}},
	{Category: "House", Allocated: Money{Cents: 4000_00}},
	{Category: "Subscriptions", Allocated: Money{Cents: 1500_00}},
	{Category: "Ad Hoc", Allocated: Money{Cents: 5000_00}},
}

// CategoryAllocation is one row of the default allocation table.
type CategoryAllocation struct {
	Category  string
	Allocated Money
}

var selfCategories = map[string]bool{
	"Hair/Nails/Beauty": true,
	"Golf":              true,
	"Ad Hoc":            true,
}

// discretionarySmart is the category set the Smart Budgeting Engine
// squeezes under savings-goal pressure.
var discretionarySmart = map[string]bool{
	"Eating Out": true,
	"Golf":       true,
	"Wine":       true,
	"Ad Hoc":     true,
	"Clothing":   true,
	"Travel":     true,
}

// The one-shot advisor classifies categories differently from the smart
// engine; the two heuristics are deliberately independent.
var (
	essentialAdvisor = map[string]bool{
		"Groceries":     true,
		"Electricity":   true,
		"Kids":          true,
		"Pet Expenses":  true,
		"House":         true,
		"Subscriptions": true,
	}
	discretionaryAdvisor = map[string]bool{
		"Eating Out": true,
		"Golf":       true,
		"Wine":       true,
		"Travel":     true,
		"Gifts":      true,
	}
)

// TrackedCategories returns the categories in default-table order.
func TrackedCategories() []string {
	out := make([]string, len(DefaultAllocations))
	for i, a := range DefaultAllocations {
		out[i] = a.Category
	}
	return out
}

// CategoryAssignment returns who a category's spend belongs to by default.
func CategoryAssignment(category string) Assignment {
	if selfCategories[category] {
		return AssignedSelf
	}
	return AssignedShared
}

// DefaultAllocation returns the default monthly allocation for a category,
// zero when the category is not in the table.
func DefaultAllocation(category string) Money {
	for _, a := range DefaultAllocations {
		if a.Category == category {
			return a.Allocated
		}
	}
	return Money{}
}
