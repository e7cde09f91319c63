package sweeper

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/domain/model"
	"github.com/ivankudzin/muji/internal/services/orders"
	"github.com/ivankudzin/muji/internal/store"
)

const defaultInterval = time.Minute

// Job periodically removes unpaid orders whose payment window has
// expired. A pass that removes nothing skips the document save.
type Job struct {
	store    *store.Store
	ledger   *orders.Service
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(st *store.Store, ledger *orders.Service, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		store:    st,
		ledger:   ledger,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// RunOnce executes a single sweep pass and reports how many orders were
// removed.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	_, err := j.store.Update(func(doc *model.Document) error {
		removed = j.ledger.Sweep(doc, j.now().UTC())
		if removed == 0 {
			return store.ErrNoChanges
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		j.logger.Info("expired orders removed", zap.Int("count", removed))
	}
	return removed, nil
}

// Run sweeps immediately, then on the configured interval until ctx is
// cancelled. Store failures are logged and the next tick runs normally.
func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("expiry sweeper started", zap.Duration("interval", j.interval))
	if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.logger.Error("sweep pass failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				j.logger.Error("sweep pass failed", zap.Error(err))
			}
		}
	}
}
