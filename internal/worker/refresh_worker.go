// Package worker keeps the stored transaction snapshot in sync with the
// external feed. Refreshes run on a timer and on demand via the message
// queue.
package worker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"begroting/internal/amqp"
	"begroting/internal/core"
	"begroting/internal/log"
	"begroting/internal/sheets"
)

// SnapshotStore is the persistence surface the worker needs.
type SnapshotStore interface {
	ReplaceSnapshot(ctx context.Context, txs []core.Transaction, fetchedAt time.Time) error
}

// Broker is the queue surface the worker needs. Optional; without one the
// worker runs on the timer alone.
type Broker interface {
	Publish(ctx context.Context, msg *amqp.Message) error
	Consume(ctx context.Context, handler func(*amqp.Message) error) error
}

// RefreshWorker fetches the feed and replaces the stored snapshot.
type RefreshWorker struct {
	source   sheets.TransactionSource
	store    SnapshotStore
	broker   Broker
	interval time.Duration
	logger   *log.Logger
}

// NewRefreshWorker creates a refresh worker.
func NewRefreshWorker(source sheets.TransactionSource, store SnapshotStore, broker Broker, interval time.Duration, logger *log.Logger) *RefreshWorker {
	return &RefreshWorker{
		source:   source,
		store:    store,
		broker:   broker,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run refreshes once immediately, then keeps refreshing on the interval
// and on queue requests until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "refresh worker starting",
		log.FieldOperation, log.OpStartup,
		"interval", w.interval.String())

	if err := w.Refresh(ctx); err != nil {
		// The first refresh failing is not fatal; the timer retries.
		w.logger.ErrorContext(ctx, "initial refresh failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.Refresh(ctx); err != nil {
					w.logger.ErrorContext(ctx, "scheduled refresh failed", log.FieldError, err)
				}
			}
		}
	})

	if w.broker != nil {
		g.Go(func() error {
			return w.broker.Consume(ctx, func(msg *amqp.Message) error {
				if msg.Kind != amqp.KindRefreshRequest {
					return nil
				}
				w.logger.InfoContext(ctx, "refresh requested",
					log.FieldOperation, log.OpRefresh,
					"reason", msg.Reason)
				return w.Refresh(ctx)
			})
		})
	}

	err := g.Wait()
	w.logger.InfoContext(ctx, "refresh worker stopped", log.FieldOperation, log.OpShutdown)
	return err
}

// Refresh fetches the feed once and swaps the stored snapshot.
func (w *RefreshWorker) Refresh(ctx context.Context) error {
	start := time.Now()
	txs, err := w.source.Fetch(ctx)
	if err != nil {
		return err
	}

	if err := w.store.ReplaceSnapshot(ctx, txs, time.Now()); err != nil {
		return err
	}

	if w.broker != nil {
		if err := w.broker.Publish(ctx, amqp.NewSnapshotRefreshed(len(txs))); err != nil {
			// The snapshot is stored; the event is best-effort.
			w.logger.WarnContext(ctx, "publish refresh event failed", log.FieldError, err)
		}
	}

	w.logger.InfoContext(ctx, "snapshot refreshed",
		log.FieldOperation, log.OpRefresh,
		log.FieldTxCount, len(txs),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}
