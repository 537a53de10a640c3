// Package memory is an in-process transaction source that generates a
// plausible household history. It backs local development and the demo
// backend, where no sheet is configured.
package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"begroting/internal/core"
)

const (
	historyMonths   = 8
	minPerMonth     = 15
	maxPerMonth     = 25
	selfSalaryCents = 45000_00
	spouseSalary    = 32000_00
)

// Spend shapes per category: rough monthly rand range the generator draws
// from. Categories missing here fall back to a small generic range.
var spendRanges = map[string][2]int{
	"Groceries":         {600, 3500},
	"Electricity":       {800, 2800},
	"Hair/Nails/Beauty": {300, 1200},
	"Pet Expenses":      {150, 900},
	"Eating Out":        {180, 1400},
	"Clothing":          {250, 2000},
	"Golf":              {350, 1500},
	"Dischem/Clicks":    {100, 900},
	"Petrol":            {500, 1800},
	"Gifts":             {150, 1000},
	"Travel":            {400, 4000},
	"Wine":              {200, 1100},
	"Kids":              {400, 3000},
	"House":             {300, 2500},
	"Subscriptions":     {99, 600},
	"Ad Hoc":            {100, 1800},
}

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

// New creates a store seeded with generated history anchored at now. The
// same seed always produces the same feed.
func New(now time.Time, seed int64) *Store {
	return &Store{items: generate(now, seed)}
}

// Fetch returns a copy of the feed.
func (s *Store) Fetch(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Add appends extra transactions, for tests that need specific rows on top
// of the generated baseline.
func (s *Store) Add(txs ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, txs...)
}

func generate(now time.Time, seed int64) []core.Transaction {
	rng := rand.New(rand.NewSource(seed))
	var out []core.Transaction
	id := 0
	nextID := func() string {
		id++
		return fmt.Sprintf("gen:%d", id)
	}

	for back := historyMonths - 1; back >= 0; back-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -back, 0)

		// Salaries land on the 25th.
		payday := monthStart.AddDate(0, 0, core.PayCycleDay-1)
		if !payday.After(now) {
			out = append(out,
				salary(nextID(), payday, selfSalaryCents, core.AssignedSelf),
				salary(nextID(), payday, spouseSalary, core.AssignedSpouse))
		}

		categories := core.TrackedCategories()
		n := minPerMonth + rng.Intn(maxPerMonth-minPerMonth+1)
		for i := 0; i < n; i++ {
			category := categories[rng.Intn(len(categories))]
			date := monthStart.AddDate(0, 0, rng.Intn(28))
			if date.After(now) {
				continue
			}
			out = append(out, spend(nextID(), rng, date, category))
		}
	}
	return core.NormalizeAll(out)
}

func salary(id string, date time.Time, cents int64, assigned core.Assignment) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        date,
		Description: "Salary",
		Category:    "Income",
		Amount:      core.Money{Cents: cents},
		Type:        core.Income,
		Account:     "Cheque",
		AssignedTo:  assigned,
	}
}

func spend(id string, rng *rand.Rand, date time.Time, category string) core.Transaction {
	lo, hi := 50, 800
	if r, ok := spendRanges[category]; ok {
		lo, hi = r[0], r[1]
	}
	amount := int64(lo+rng.Intn(hi-lo+1)) * 100

	tx := core.Transaction{
		ID:          id,
		Date:        date,
		Description: fmt.Sprintf("%s purchase", category),
		Category:    category,
		Amount:      core.Money{Cents: amount},
		Type:        core.Expense,
		Account:     "Cheque",
		AssignedTo:  core.CategoryAssignment(category),
	}

	// Roughly 40% of spend goes on the shared credit card.
	if rng.Float64() < 0.4 {
		tx.PaymentMethod = core.CreditCard
		tx.Account = "Credit Card"
	}
	// The occasional shared item carries its own split.
	if tx.AssignedTo == core.AssignedShared && rng.Float64() < 0.2 {
		split := float64(40 + rng.Intn(31))
		tx.SplitPercent = &split
	}
	return tx
}
