package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly  Frequency = "monthly"
	Weekly   Frequency = "weekly"
	BiWeekly Frequency = "bi-weekly"
	Annual   Frequency = "annual"
)

const (
	PersonSelf   Person = "self"
	PersonSpouse Person = "spouse"
)

const (
	AssignedSelf   Assignment = "self"
	AssignedSpouse Assignment = "spouse"
	AssignedShared Assignment = "shared"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	Cash       PaymentMethod = "cash"
	CreditCard PaymentMethod = "credit_card"
)

// Monthly-equivalent multipliers for recurring items.
const (
	weeklyPerMonth   = 4.33
	biWeeklyPerMonth = 2.17
)

type (
	Frequency     string
	Person        string
	Assignment    string
	TxType        string
	PaymentMethod string

	// Transaction is an immutable fact once ingested. The working set is
	// only ever filtered, never written back.
	Transaction struct {
		ID          string
		Date        time.Time
		Description string
		Category    string
		Amount      Money
		Type        TxType
		Account     string
		AssignedTo  Assignment
		// SplitPercent is self's share (0-100) of a shared transaction.
		// Nil means fall back to the household default split.
		SplitPercent  *float64
		PaymentMethod PaymentMethod
	}

	// IncomeSource is a user-configured recurring cash inflow.
	IncomeSource struct {
		ID         string
		Name       string
		Amount     Money
		Frequency  Frequency
		AssignedTo Assignment
		IsActive   bool
	}

	// FixedExpense is a user-configured recurring cash outflow. Shared
	// items carry self's split percentage.
	FixedExpense struct {
		ID           string
		Name         string
		Amount       Money
		Category     string
		Frequency    Frequency
		AssignedTo   Assignment
		SplitPercent *float64
		DueDay       int // day of month, 0 when unset
		IsActive     bool
	}

	// ManualBudget is a user-set monthly allocation for one category.
	// When present and active it supersedes the default allocation table.
	ManualBudget struct {
		ID           string
		Category     string
		Allocated    Money
		AssignedTo   Assignment
		SplitPercent *float64
		IsActive     bool
	}

	// SavingsGoal is read-only to the pipeline; it only feeds the
	// required-monthly-contribution and on-track computations.
	SavingsGoal struct {
		ID                  string
		Name                string
		TargetAmount        Money
		CurrentAmount       Money
		TargetDate          time.Time
		Priority            string
		MonthlyContribution Money
		Category            string
		AssignedTo          Assignment
	}

	// BudgetSetup is the household configuration aggregate root: exactly
	// two members, labeled structurally as self and spouse.
	BudgetSetup struct {
		SelfName             string
		SpouseName           string
		DefaultSplitPercent  float64 // self's share of shared items
		IncomeSources        []IncomeSource
		FixedExpenses        []FixedExpense
		ManualBudgets        []ManualBudget
		LastSettlement       *time.Time
		SelfOpeningBalance   Money
		SpouseOpeningBalance Money
		BalanceAsOfDate      *time.Time
		// ZeroBalances forces each closing balance to zero by
		// back-solving the opening balance for the selected period.
		ZeroBalances bool
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidSplit     = errors.New("split percentage out of range")
	ErrInvalidType      = errors.New("invalid transaction type")
)

// Other returns the opposite household member.
func (p Person) Other() Person {
	if p == PersonSelf {
		return PersonSpouse
	}
	return PersonSelf
}

// MonthlyAmount normalizes a recurring amount to its monthly equivalent.
func MonthlyAmount(amount Money, freq Frequency) Money {
	switch freq {
	case Weekly:
		return Money{Cents: roundHalfUp(float64(amount.Cents) * weeklyPerMonth)}
	case BiWeekly:
		return Money{Cents: roundHalfUp(float64(amount.Cents) * biWeeklyPerMonth)}
	case Annual:
		return Money{Cents: roundHalfUp(float64(amount.Cents) / 12)}
	default:
		return amount
	}
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if t.SplitPercent != nil && (*t.SplitPercent < 0 || *t.SplitPercent > 100) {
		return ErrInvalidSplit
	}
	return nil
}

// Normalize resolves the ingestion heuristics into canonical enum values so
// the pipeline never inspects free text again: a missing assignment becomes
// shared, and any of the three credit signals (payment method, account text,
// description text) collapses into PaymentMethod.
func (t Transaction) Normalize() Transaction {
	if t.AssignedTo == "" {
		t.AssignedTo = AssignedShared
	}
	if t.PaymentMethod == CreditCard ||
		strings.Contains(strings.ToLower(t.Account), "credit") ||
		strings.Contains(strings.ToLower(t.Description), "credit") {
		t.PaymentMethod = CreditCard
	} else {
		t.PaymentMethod = Cash
	}
	return t
}

// IsCreditCard reports whether the transaction settles through the shared
// credit card. Callers must normalize first.
func (t Transaction) IsCreditCard() bool {
	return t.PaymentMethod == CreditCard
}

// NormalizeAll normalizes a batch, silently dropping rows that fail
// validation: a malformed row must not poison the rest of the batch.
func NormalizeAll(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		n := t.Normalize()
		if err := n.Validate(); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
