package core

import "testing"

func balanceSetup() *BudgetSetup {
	return &BudgetSetup{
		SelfName:             "Anna",
		SpouseName:           "Ben",
		DefaultSplitPercent:  55,
		SelfOpeningBalance:   Money{Cents: 1000_00},
		SpouseOpeningBalance: Money{Cents: 500_00},
		FixedExpenses: []FixedExpense{
			{Name: "Bond", Amount: Money{Cents: 2000_00}, Frequency: Monthly, AssignedTo: AssignedShared, IsActive: true},
		},
	}
}

func balanceTxs() []Transaction {
	sal := income(5000_00, AssignedSelf)
	sal.Date = day(2025, 6, 25)

	shared := expense("Groceries", 1000_00, AssignedShared, nil)
	shared.Date = day(2025, 6, 5)

	credit := expense("Eating Out", 400_00, AssignedShared, nil)
	credit.PaymentMethod = CreditCard
	credit.Date = day(2025, 6, 10)

	return []Transaction{sal, shared, credit}
}

func TestProjectBankBalances(t *testing.T) {
	period := CalendarMonth(day(2025, 6, 1))
	got := ProjectBankBalances(balanceTxs(), balanceSetup(), period)

	// Self: 1000 + 5000 - 1100 fixed - 550 cash = 4350.
	if got.Self.TotalIncome.Cents != 5000_00 {
		t.Fatalf("self income = %d, want 500000", got.Self.TotalIncome.Cents)
	}
	if got.Self.FixedExpenses.Cents != 1100_00 {
		t.Fatalf("self fixed = %d, want 110000", got.Self.FixedExpenses.Cents)
	}
	if got.Self.CashExpenses.Cents != 550_00 {
		t.Fatalf("self cash = %d, want 55000", got.Self.CashExpenses.Cents)
	}
	if !got.Self.CreditCardSettlements.IsZero() {
		t.Fatalf("self settlements = %d, want 0 without a settlement", got.Self.CreditCardSettlements.Cents)
	}
	if got.Self.ClosingBalance.Cents != 4350_00 {
		t.Fatalf("self closing = %d, want 435000", got.Self.ClosingBalance.Cents)
	}

	// Spouse: 500 + 0 - 900 fixed - 450 cash = -850.
	if got.Spouse.ClosingBalance.Cents != -850_00 {
		t.Fatalf("spouse closing = %d, want -85000", got.Spouse.ClosingBalance.Cents)
	}

	if got.Combined.TotalClosingBalance.Cents != 3500_00 {
		t.Fatalf("combined closing = %d, want 350000", got.Combined.TotalClosingBalance.Cents)
	}
}

func TestProjectBankBalancesReconcile(t *testing.T) {
	period := CalendarMonth(day(2025, 6, 1))
	got := ProjectBankBalances(balanceTxs(), balanceSetup(), period)

	for _, p := range []PersonBankBalance{got.Self, got.Spouse} {
		want := p.OpeningBalance.Add(p.TotalIncome).
			Sub(p.FixedExpenses).Sub(p.CashExpenses).Sub(p.CreditCardSettlements)
		if p.ClosingBalance != want {
			t.Fatalf("closing %d does not reconcile to %d", p.ClosingBalance.Cents, want.Cents)
		}
	}
}

func TestProjectBankBalancesSettlementInPeriod(t *testing.T) {
	setup := balanceSetup()
	settledAt := day(2025, 6, 20)
	setup.LastSettlement = &settledAt

	period := CalendarMonth(day(2025, 6, 1))
	got := ProjectBankBalances(balanceTxs(), setup, period)

	// The June 10 credit expense (R400 shared) drains both accounts.
	if got.Self.CreditCardSettlements.Cents != 220_00 {
		t.Fatalf("self settlement = %d, want 22000", got.Self.CreditCardSettlements.Cents)
	}
	if got.Spouse.CreditCardSettlements.Cents != 180_00 {
		t.Fatalf("spouse settlement = %d, want 18000", got.Spouse.CreditCardSettlements.Cents)
	}
}

func TestProjectBankBalancesSettlementOutsidePeriod(t *testing.T) {
	setup := balanceSetup()
	settledAt := day(2025, 5, 20)
	setup.LastSettlement = &settledAt

	period := CalendarMonth(day(2025, 6, 1))
	got := ProjectBankBalances(balanceTxs(), setup, period)

	if !got.Self.CreditCardSettlements.IsZero() || !got.Spouse.CreditCardSettlements.IsZero() {
		t.Fatal("a settlement outside the period must not touch it")
	}
}

func TestProjectBankBalancesZeroBalances(t *testing.T) {
	setup := balanceSetup()
	setup.ZeroBalances = true

	period := CalendarMonth(day(2025, 6, 1))
	got := ProjectBankBalances(balanceTxs(), setup, period)

	if !got.Self.ClosingBalance.IsZero() {
		t.Fatalf("self closing = %d, want exactly 0", got.Self.ClosingBalance.Cents)
	}
	if !got.Spouse.ClosingBalance.IsZero() {
		t.Fatalf("spouse closing = %d, want exactly 0", got.Spouse.ClosingBalance.Cents)
	}
	// The back-solved opening is whatever makes the flows land on zero.
	if got.Self.OpeningBalance.Cents != -3350_00 {
		t.Fatalf("self back-solved opening = %d, want -335000", got.Self.OpeningBalance.Cents)
	}
}

func TestProjectBankBalancesNilSetup(t *testing.T) {
	got := ProjectBankBalances(balanceTxs(), nil, CalendarMonth(day(2025, 6, 1)))
	if !got.Combined.TotalClosingBalance.IsZero() {
		t.Fatal("nil setup must degrade to zeroed balances")
	}
}

func TestProjectBankBalancesObservedVsConfiguredIncome(t *testing.T) {
	// The projector uses observed income transactions; configured income
	// sources in the setup do not feed it.
	setup := balanceSetup()
	setup.IncomeSources = []IncomeSource{
		{Name: "Salary", Amount: Money{Cents: 99999_00}, Frequency: Monthly, AssignedTo: AssignedSelf, IsActive: true},
	}

	var noIncome []Transaction
	for _, tx := range balanceTxs() {
		if tx.Type == Income {
			continue
		}
		noIncome = append(noIncome, tx)
	}

	got := ProjectBankBalances(noIncome, setup, CalendarMonth(day(2025, 6, 1)))
	if !got.Self.TotalIncome.IsZero() {
		t.Fatalf("observed income = %d, want 0 with no income transactions", got.Self.TotalIncome.Cents)
	}
}
