package core

type (
	// PersonBankBalance is one member's running cash position for a
	// period. TotalIncome here is observed income (actual income
	// transactions), as opposed to the summary's configured income.
	PersonBankBalance struct {
		OpeningBalance        Money
		TotalIncome           Money
		FixedExpenses         Money
		CashExpenses          Money
		CreditCardSettlements Money
		ClosingBalance        Money
		Transactions          []Transaction
	}

	// CombinedBankBalance reconciles both members.
	CombinedBankBalance struct {
		TotalClosingBalance Money
		TotalIncome         Money
		TotalExpenses       Money
	}

	// BankBalances is the Bank Balance Projector output.
	BankBalances struct {
		Self     PersonBankBalance
		Spouse   PersonBankBalance
		Combined CombinedBankBalance
	}
)

// ProjectBankBalances computes each member's running balance for the
// period from normalized transactions. A nil setup degrades to zeroed
// balances.
func ProjectBankBalances(txs []Transaction, setup *BudgetSetup, period Period) BankBalances {
	if setup == nil {
		return BankBalances{}
	}

	self := projectPerson(txs, setup, period, PersonSelf)
	spouse := projectPerson(txs, setup, period, PersonSpouse)

	return BankBalances{
		Self:   self,
		Spouse: spouse,
		Combined: CombinedBankBalance{
			TotalClosingBalance: self.ClosingBalance.Add(spouse.ClosingBalance),
			TotalIncome:         self.TotalIncome.Add(spouse.TotalIncome),
			TotalExpenses: self.FixedExpenses.Add(self.CashExpenses).Add(self.CreditCardSettlements).
				Add(spouse.FixedExpenses).Add(spouse.CashExpenses).Add(spouse.CreditCardSettlements),
		},
	}
}

func projectPerson(txs []Transaction, setup *BudgetSetup, period Period, person Person) PersonBankBalance {
	defaultSplit := setup.DefaultSplit()
	inPeriod := FilterPeriod(txs, period)

	var out PersonBankBalance

	for _, t := range inPeriod {
		if t.Type == Income && t.AssignedTo == Assignment(person) {
			out.TotalIncome = out.TotalIncome.Add(t.Amount)
		}
		if t.AssignedTo == Assignment(person) || (t.AssignedTo == AssignedShared && t.Type == Expense) {
			out.Transactions = append(out.Transactions, t)
		}
	}

	for _, exp := range setup.FixedExpenses {
		if !exp.IsActive {
			continue
		}
		monthly := MonthlyAmount(exp.Amount, exp.Frequency)
		switch exp.AssignedTo {
		case Assignment(person):
			out.FixedExpenses = out.FixedExpenses.Add(monthly)
		case AssignedShared:
			split := ResolveSplit(exp.SplitPercent, defaultSplit)
			out.FixedExpenses = out.FixedExpenses.Add(SharedShare(monthly, person, split))
		}
	}

	for _, t := range inPeriod {
		if t.Type != Expense || t.IsCreditCard() {
			continue
		}
		out.CashExpenses = out.CashExpenses.Add(Share(t, person, defaultSplit))
	}

	// A settlement drains the bank account in the period it happened in;
	// settlements from other periods do not touch this one.
	if setup.LastSettlement != nil && period.Contains(*setup.LastSettlement) {
		for _, t := range txs {
			if t.Type != Expense || !t.IsCreditCard() || t.Date.After(*setup.LastSettlement) {
				continue
			}
			out.CreditCardSettlements = out.CreditCardSettlements.Add(Share(t, person, defaultSplit))
		}
	}

	out.OpeningBalance = setup.SelfOpeningBalance
	if person == PersonSpouse {
		out.OpeningBalance = setup.SpouseOpeningBalance
	}
	// The zero-balances reset back-solves the opening balance so that the
	// closing balance lands on exactly zero, letting the user re-baseline
	// without knowing today's true balance.
	if setup.ZeroBalances {
		out.OpeningBalance = out.FixedExpenses.Add(out.CashExpenses).Add(out.CreditCardSettlements).Sub(out.TotalIncome)
	}
	out.ClosingBalance = out.OpeningBalance.Add(out.TotalIncome).
		Sub(out.FixedExpenses).Sub(out.CashExpenses).Sub(out.CreditCardSettlements)
	return out
}
