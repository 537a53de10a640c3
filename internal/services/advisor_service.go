package services

import (
	"context"
	"time"

	"begroting/internal/core"
	"begroting/internal/log"
)

// AdvisorService runs the one-shot budget advisor. The heuristic is cheap;
// the configurable delay simulates a slow analysis so the caller's loading
// states stay honest.
type AdvisorService struct {
	delay  time.Duration
	logger *log.Logger
}

// NewAdvisorService creates an advisor service with the given simulated
// analysis delay.
func NewAdvisorService(delay time.Duration, logger *log.Logger) *AdvisorService {
	return &AdvisorService{
		delay:  delay,
		logger: logger.WithComponent(log.ComponentAdvisor),
	}
}

// Recommend computes the one-shot recommendations. Cancelling the context
// during the delay aborts without computing.
func (s *AdvisorService) Recommend(ctx context.Context, txs []core.Transaction, setup *core.BudgetSetup, now time.Time) ([]core.Recommendation, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	recs := core.Recommendations(txs, setup, now)
	s.logger.InfoContext(ctx, "recommendations computed",
		log.FieldOperation, log.OpAdvise,
		"recommendations", len(recs),
		log.FieldTxCount, len(txs))
	return recs, nil
}
