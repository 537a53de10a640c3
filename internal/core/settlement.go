package core

import "time"

// CreditCardBalance is each member's outstanding share of credit-card
// expenses since the last settlement. It is fully re-derivable from the
// settlement timestamp plus transaction history; settling never mutates a
// transaction, it only moves the timestamp forward.
type CreditCardBalance struct {
	SelfOwes         Money
	SpouseOwes       Money
	TotalOutstanding Money
	LastSettlement   *time.Time
	Transactions     []Transaction
}

// SettleCreditCard computes the outstanding balance from normalized
// transactions. Eligible transactions are credit-card expenses dated
// strictly after the last settlement; a nil settlement date means the
// whole history counts.
func SettleCreditCard(txs []Transaction, lastSettlement *time.Time, defaultSplit float64) CreditCardBalance {
	out := CreditCardBalance{LastSettlement: lastSettlement}
	for _, t := range txs {
		if t.Type != Expense || !t.IsCreditCard() {
			continue
		}
		if lastSettlement != nil && !t.Date.After(*lastSettlement) {
			continue
		}
		out.SelfOwes = out.SelfOwes.Add(Share(t, PersonSelf, defaultSplit))
		out.SpouseOwes = out.SpouseOwes.Add(Share(t, PersonSpouse, defaultSplit))
		out.Transactions = append(out.Transactions, t)
	}
	out.TotalOutstanding = out.SelfOwes.Add(out.SpouseOwes)
	return out
}
