// Package services holds the application services between the HTTP layer
// and the storage/derivation machinery.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"begroting/internal/amqp"
	"begroting/internal/core"
	"begroting/internal/log"
	"begroting/internal/storage"
)

var (
	// ErrAPILocked is returned by write operations while the lock flag is
	// set.
	ErrAPILocked = errors.New("api is locked")

	ErrInvalidSetup = errors.New("invalid setup")
)

// SettingsStore is the persistence surface the setup service needs.
type SettingsStore interface {
	LoadSetup(ctx context.Context) (*core.BudgetSetup, error)
	SaveSetup(ctx context.Context, setup *core.BudgetSetup) error
	LoadGoals(ctx context.Context) ([]core.SavingsGoal, error)
	SaveGoals(ctx context.Context, goals []core.SavingsGoal) error
	RecordSettlement(ctx context.Context, at time.Time) error
	APILocked(ctx context.Context) (bool, error)
	SetAPILocked(ctx context.Context, locked bool) error
}

// Publisher sends events to the exchange. Optional; a nil publisher means
// events are skipped.
type Publisher interface {
	Publish(ctx context.Context, msg *amqp.Message) error
}

// Invalidator drops memoized derivations after configuration changes.
type Invalidator interface {
	Invalidate()
}

// SetupService manages the household configuration and the settlement
// action.
type SetupService struct {
	store     SettingsStore
	publisher Publisher
	engine    Invalidator
	logger    *log.Logger
	now       func() time.Time
}

// NewSetupService creates a setup service.
func NewSetupService(store SettingsStore, publisher Publisher, engine Invalidator, logger *log.Logger) *SetupService {
	return &SetupService{
		store:     store,
		publisher: publisher,
		engine:    engine,
		logger:    logger.WithComponent(log.ComponentSetup),
		now:       time.Now,
	}
}

// Setup returns the stored household setup. Before the first save there is
// no setup; that is a valid state and returns nil.
func (s *SetupService) Setup(ctx context.Context) (*core.BudgetSetup, error) {
	setup, err := s.store.LoadSetup(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return setup, err
}

// SaveSetup validates and stores the household setup. Configured items
// without an ID get one assigned.
func (s *SetupService) SaveSetup(ctx context.Context, setup *core.BudgetSetup) error {
	if err := s.ensureUnlocked(ctx); err != nil {
		return err
	}
	if setup == nil {
		return fmt.Errorf("%w: setup is required", ErrInvalidSetup)
	}
	if setup.DefaultSplitPercent < 0 || setup.DefaultSplitPercent > 100 {
		return fmt.Errorf("%w: default split %v out of range", ErrInvalidSetup, setup.DefaultSplitPercent)
	}
	for i := range setup.IncomeSources {
		if setup.IncomeSources[i].ID == "" {
			setup.IncomeSources[i].ID = uuid.NewString()
		}
	}
	for i := range setup.FixedExpenses {
		exp := &setup.FixedExpenses[i]
		if exp.SplitPercent != nil && (*exp.SplitPercent < 0 || *exp.SplitPercent > 100) {
			return fmt.Errorf("%w: fixed expense %q split out of range", ErrInvalidSetup, exp.Name)
		}
		if exp.ID == "" {
			exp.ID = uuid.NewString()
		}
	}
	for i := range setup.ManualBudgets {
		if setup.ManualBudgets[i].ID == "" {
			setup.ManualBudgets[i].ID = uuid.NewString()
		}
	}

	if err := s.store.SaveSetup(ctx, setup); err != nil {
		return err
	}
	s.invalidate()
	s.logger.InfoContext(ctx, "setup saved",
		log.FieldOperation, log.OpSave,
		"income_sources", len(setup.IncomeSources),
		"fixed_expenses", len(setup.FixedExpenses),
		"manual_budgets", len(setup.ManualBudgets))
	return nil
}

// Goals returns the stored savings goals.
func (s *SetupService) Goals(ctx context.Context) ([]core.SavingsGoal, error) {
	return s.store.LoadGoals(ctx)
}

// SaveGoals validates and stores the savings goals.
func (s *SetupService) SaveGoals(ctx context.Context, goals []core.SavingsGoal) error {
	if err := s.ensureUnlocked(ctx); err != nil {
		return err
	}
	for i := range goals {
		g := &goals[i]
		if g.TargetAmount.Cents < 0 || g.CurrentAmount.Cents < 0 || g.MonthlyContribution.Cents < 0 {
			return fmt.Errorf("%w: goal %q has a negative amount", ErrInvalidSetup, g.Name)
		}
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
	}
	if err := s.store.SaveGoals(ctx, goals); err != nil {
		return err
	}
	s.invalidate()
	s.logger.InfoContext(ctx, "goals saved",
		log.FieldOperation, log.OpSave,
		"goals", len(goals))
	return nil
}

// RecordSettlement marks the credit card as settled right now and returns
// the recorded timestamp. The transaction history is untouched; the
// timestamp alone zeroes the outstanding balance.
func (s *SetupService) RecordSettlement(ctx context.Context) (time.Time, error) {
	if err := s.ensureUnlocked(ctx); err != nil {
		return time.Time{}, err
	}

	at := s.now()
	if err := s.store.RecordSettlement(ctx, at); err != nil {
		return time.Time{}, err
	}
	s.invalidate()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, amqp.NewSettlementRecorded(at)); err != nil {
			// The settlement is durable; the event is best-effort.
			s.logger.WarnContext(ctx, "publish settlement event failed", log.FieldError, err)
		}
	}

	s.logger.InfoContext(ctx, "credit card settled",
		log.FieldOperation, log.OpSettle,
		"settled_at", at.Format(time.RFC3339))
	return at, nil
}

// Locked reports the API lock state.
func (s *SetupService) Locked(ctx context.Context) (bool, error) {
	return s.store.APILocked(ctx)
}

// SetLocked flips the API lock. Unlocking is always allowed.
func (s *SetupService) SetLocked(ctx context.Context, locked bool) error {
	return s.store.SetAPILocked(ctx, locked)
}

func (s *SetupService) ensureUnlocked(ctx context.Context) error {
	locked, err := s.store.APILocked(ctx)
	if err != nil {
		return err
	}
	if locked {
		return ErrAPILocked
	}
	return nil
}

func (s *SetupService) invalidate() {
	if s.engine != nil {
		s.engine.Invalidate()
	}
}
