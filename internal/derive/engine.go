// Package derive memoizes the pure computation pipeline. Every dashboard
// view is a function of (transactions, setup, goals, period, now); the
// engine hashes those inputs, collapses concurrent identical requests and
// caches the resulting snapshot.
package derive

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"begroting/internal/cache"
	"begroting/internal/core"
	"begroting/internal/log"
)

const (
	snapshotCacheSize = 64
	snapshotCacheTTL  = 5 * time.Minute
)

// Snapshot is the complete derived state for one period: everything the
// dashboard shows, computed in one pass.
type Snapshot struct {
	Period          core.Period
	Summary         core.FinancialSummary
	CategoryBudgets []core.CategoryBudget
	SmartBudgets    []core.SmartBudget
	Analysis        []core.BudgetAnalysis
	Settlement      core.CreditCardBalance
	BankBalances    core.BankBalances
	SelfSummary     core.PersonSummary
	SpouseSummary   core.PersonSummary
	MonthlyTrends   []core.MonthlyTrend
	Goals           []core.GoalStatus
	GeneratedAt     time.Time
}

// Inputs bundles everything a derivation depends on.
type Inputs struct {
	Transactions []core.Transaction
	Setup        *core.BudgetSetup
	Goals        []core.SavingsGoal
	Period       core.Period
	Now          time.Time
}

// Engine derives snapshots with memoization.
type Engine struct {
	snapshots *cache.LRUCache[Snapshot]
	group     singleflight.Group
	logger    *log.Logger

	computed atomic.Int64
	hits     atomic.Int64
}

// NewEngine creates a derivation engine.
func NewEngine(logger *log.Logger) *Engine {
	return &Engine{
		snapshots: cache.NewLRUCache[Snapshot](snapshotCacheSize, snapshotCacheTTL),
		logger:    logger.WithComponent(log.ComponentDerive),
	}
}

// Caches returns the engine's caches for cleanup registration.
func (e *Engine) Caches() []cache.Cleaner {
	return []cache.Cleaner{e.snapshots}
}

// Derive returns the snapshot for the given inputs, computing it at most
// once per distinct input set. Concurrent callers with the same inputs
// share one computation.
func (e *Engine) Derive(ctx context.Context, in Inputs) (Snapshot, error) {
	key := e.key(in)

	if snap, ok := e.snapshots.Get(key); ok {
		e.hits.Add(1)
		return snap, nil
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		start := time.Now()
		snap := compute(in)
		e.snapshots.Set(key, snap)
		e.computed.Add(1)
		e.logger.DebugContext(ctx, "snapshot derived",
			log.FieldPeriod, in.Period.Label,
			log.FieldTxCount, len(in.Transactions),
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldCacheKey, key)
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Invalidate drops all memoized snapshots. Called after a data refresh or
// a configuration change.
func (e *Engine) Invalidate() {
	e.snapshots.Purge()
}

// Stats reports computed and cache-served snapshot counts.
func (e *Engine) Stats() (computed, hits int64) {
	return e.computed.Load(), e.hits.Load()
}

func compute(in Inputs) Snapshot {
	inPeriod := core.FilterPeriod(in.Transactions, in.Period)

	smart := core.SmartBudgets(in.Transactions, in.Goals, in.Setup, in.Period, in.Now)
	self, spouse := core.PersonSummaries(in.Setup)

	var lastSettlement *time.Time
	if in.Setup != nil {
		lastSettlement = in.Setup.LastSettlement
	}

	return Snapshot{
		Period:          in.Period,
		Summary:         core.Summarize(inPeriod, in.Goals, in.Setup),
		CategoryBudgets: core.CategoryBudgets(inPeriod, in.Setup),
		SmartBudgets:    smart,
		Analysis:        core.ComposeAnalysis(smart, in.Goals),
		Settlement:      core.SettleCreditCard(in.Transactions, lastSettlement, in.Setup.DefaultSplit()),
		BankBalances:    core.ProjectBankBalances(in.Transactions, in.Setup, in.Period),
		SelfSummary:     self,
		SpouseSummary:   spouse,
		MonthlyTrends:   core.MonthlyTrends(in.Transactions, in.Now, 6),
		Goals:           core.GoalStatuses(in.Goals, in.Now),
		GeneratedAt:     time.Now(),
	}
}

// key fingerprints the inputs. "Now" is truncated to the hour so the
// memoization survives the clock ticking without going stale for long.
func (e *Engine) key(in Inputs) string {
	h := fnv.New64a()

	fmt.Fprintf(h, "p:%d:%d;n:%d;", in.Period.Start.Unix(), in.Period.End.Unix(), in.Now.Truncate(time.Hour).Unix())

	for _, t := range in.Transactions {
		split := float64(-1)
		if t.SplitPercent != nil {
			split = *t.SplitPercent
		}
		fmt.Fprintf(h, "t:%s:%d:%d:%s:%s:%s:%g:%s;",
			t.ID, t.Date.Unix(), t.Amount.Cents, t.Type, t.Category, t.AssignedTo, split, t.PaymentMethod)
	}

	if s := in.Setup; s != nil {
		fmt.Fprintf(h, "s:%g:%d:%d:%t;", s.DefaultSplitPercent, s.SelfOpeningBalance.Cents, s.SpouseOpeningBalance.Cents, s.ZeroBalances)
		if s.LastSettlement != nil {
			fmt.Fprintf(h, "ls:%d;", s.LastSettlement.Unix())
		}
		for _, src := range s.IncomeSources {
			fmt.Fprintf(h, "i:%s:%d:%s:%s:%t;", src.ID, src.Amount.Cents, src.Frequency, src.AssignedTo, src.IsActive)
		}
		for _, exp := range s.FixedExpenses {
			split := float64(-1)
			if exp.SplitPercent != nil {
				split = *exp.SplitPercent
			}
			fmt.Fprintf(h, "f:%s:%d:%s:%s:%g:%t;", exp.ID, exp.Amount.Cents, exp.Frequency, exp.AssignedTo, split, exp.IsActive)
		}
		for _, b := range s.ManualBudgets {
			fmt.Fprintf(h, "m:%s:%s:%d:%t;", b.ID, b.Category, b.Allocated.Cents, b.IsActive)
		}
	}

	for _, g := range in.Goals {
		fmt.Fprintf(h, "g:%s:%d:%d:%d:%d;", g.ID, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.TargetDate.Unix(), g.MonthlyContribution.Cents)
	}

	return fmt.Sprintf("%x", h.Sum64())
}
