package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/metrics"
)

// PendingCounter counts orders still awaiting review.
type PendingCounter interface {
	CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// StaleOrderWorker periodically reports orders left pending for too long.
type StaleOrderWorker struct {
	orders   PendingCounter
	interval time.Duration
	after    time.Duration
	now      func() time.Time
}

// NewStaleOrderWorker constructs a StaleOrderWorker.
func NewStaleOrderWorker(orders PendingCounter, interval, after time.Duration) *StaleOrderWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StaleOrderWorker{
		orders:   orders,
		interval: interval,
		after:    after,
		now:      time.Now,
	}
}

// Start runs the check loop until ctx is canceled.
func (w *StaleOrderWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("after", w.after).Msg("Starting stale order worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Stale order worker stopped")
			return
		}
	}
}

func (w *StaleOrderWorker) run(ctx context.Context) int {
	count, err := w.orders.CountPendingOlderThan(ctx, w.now().Add(-w.after))
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to count stale orders")
		}
		return -1
	}
	metrics.PendingOrdersStale.Set(float64(count))
	if count > 0 {
		log.Warn().Int("count", count).Dur("older_than", w.after).Msg("Orders awaiting review")
	}
	return count
}
