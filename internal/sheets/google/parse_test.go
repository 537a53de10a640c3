package google

import (
	"testing"

	"begroting/internal/core"
)

func row(vals ...any) []any { return vals }

func TestParseExpenseRow(t *testing.T) {
	p := NewRowParser("Anna", "Ben")

	tx, err := p.Parse(row("2025-06-10", "Woolworths", "Both", "Groceries", "Combined", "1250.50", "Credit Card", "", "687.78", "562.72"), 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if tx.ID != "sheet:2" {
		t.Errorf("ID = %q, want sheet:2", tx.ID)
	}
	if tx.Type != core.Expense {
		t.Errorf("type = %q, want expense", tx.Type)
	}
	if tx.Amount.Cents != 125050 {
		t.Errorf("amount = %d, want 125050", tx.Amount.Cents)
	}
	if tx.AssignedTo != core.AssignedShared {
		t.Errorf("assigned = %q, want shared", tx.AssignedTo)
	}
	if tx.PaymentMethod != core.CreditCard {
		t.Errorf("payment method = %q, want credit_card", tx.PaymentMethod)
	}
	if tx.SplitPercent == nil {
		t.Fatal("expected an explicit split")
	}
	if got := *tx.SplitPercent; got < 54.9 || got > 55.1 {
		t.Errorf("split = %v, want ~55", got)
	}
}

func TestParseIncomeRowSignConvention(t *testing.T) {
	p := NewRowParser("Anna", "Ben")

	tx, err := p.Parse(row("2025-06-25", "Salary", "Anna", "Income", "Personal", "-45000.00"), 3)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if tx.Type != core.Income {
		t.Errorf("type = %q, want income", tx.Type)
	}
	if tx.Amount.Cents != 4500000 {
		t.Errorf("amount = %d, want positive 4500000", tx.Amount.Cents)
	}
	if tx.AssignedTo != core.AssignedSelf {
		t.Errorf("assigned = %q, want self (matched by name)", tx.AssignedTo)
	}
}

func TestParsePersonMapping(t *testing.T) {
	p := NewRowParser("Anna", "Ben")
	cases := []struct {
		raw  string
		want core.Assignment
	}{
		{"anna", core.AssignedSelf},
		{"BEN", core.AssignedSpouse},
		{"self", core.AssignedSelf},
		{"spouse", core.AssignedSpouse},
		{"Both", core.AssignedShared},
		{"joint", core.AssignedShared},
		{"", core.AssignedShared},
		{"someone else", core.AssignedShared},
	}
	for _, tc := range cases {
		if got := p.assignment(tc.raw); got != tc.want {
			t.Errorf("assignment(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	p := NewRowParser("", "")
	for _, raw := range []string{"2025-06-10", "2025/06/10", "10/06/2025", "10 Jun 2025"} {
		tx, err := p.Parse(row(raw, "x", "", "Groceries", "", "100"), 0)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if tx.Date.Year() != 2025 || tx.Date.Month() != 6 || tx.Date.Day() != 10 {
			t.Errorf("Parse(%q) date = %v", raw, tx.Date)
		}
	}
}

func TestParseRejectsBadRows(t *testing.T) {
	p := NewRowParser("", "")
	cases := [][]any{
		row("2025-06-10", "too short"),
		row("not a date", "x", "", "Groceries", "", "100"),
		row("2025-06-10", "", "", "Groceries", "", "100"),
		row("2025-06-10", "x", "", "Groceries", "", "not money"),
	}
	for i, r := range cases {
		if _, err := p.Parse(r, i); err == nil {
			t.Errorf("case %d: expected an error", i)
		}
	}
}

func TestParseSplitIgnoredWhenColumnsMissing(t *testing.T) {
	p := NewRowParser("", "")
	tx, err := p.Parse(row("2025-06-10", "x", "", "Groceries", "", "100"), 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tx.SplitPercent != nil {
		t.Fatal("split must be nil without per-person columns")
	}
}
