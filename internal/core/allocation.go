package core

// DefaultSelfShare is the fixed fallback split (self's percentage of a
// shared amount) used when neither an explicit split nor a household
// default is available. One canonical resolution order applies
// everywhere:
//
//	explicit split -> household default -> DefaultSelfShare
const DefaultSelfShare = 55.0

// ResolveSplit applies the canonical resolution order and returns self's
// percentage share of a shared amount.
func ResolveSplit(explicit *float64, householdDefault float64) float64 {
	if explicit != nil {
		return *explicit
	}
	if householdDefault > 0 {
		return householdDefault
	}
	return DefaultSelfShare
}

// DefaultSplit returns the household default split, or the fixed fallback
// when the setup is absent or unconfigured.
func (s *BudgetSetup) DefaultSplit() float64 {
	if s == nil || s.DefaultSplitPercent <= 0 {
		return DefaultSelfShare
	}
	return s.DefaultSplitPercent
}

// Share computes person's monetary share of a transaction. A transaction
// assigned to the person is theirs in full; one assigned to the other
// person contributes nothing; a shared one splits by percentage.
//
// The split percentage always means self's share. Self's cents are rounded
// first and spouse receives the exact remainder, so the two shares always
// partition the amount. Getting that inversion wrong silently swaps the
// two people's balances, so it lives here and nowhere else.
func Share(t Transaction, person Person, defaultSplit float64) Money {
	switch t.AssignedTo {
	case Assignment(person):
		return t.Amount
	case AssignedShared:
		selfShare := t.Amount.Percent(ResolveSplit(t.SplitPercent, defaultSplit))
		if person == PersonSelf {
			return selfShare
		}
		return t.Amount.Sub(selfShare)
	default:
		return Money{}
	}
}

// SharedShare computes person's share of a recurring shared item given
// self's split percentage, with the same rounding contract as Share.
func SharedShare(amount Money, person Person, selfPercent float64) Money {
	selfShare := amount.Percent(selfPercent)
	if person == PersonSelf {
		return selfShare
	}
	return amount.Sub(selfShare)
}
