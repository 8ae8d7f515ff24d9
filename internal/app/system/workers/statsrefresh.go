// internal/app/system/workers/statsrefresh.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.uber.org/zap"
)

// StatsSource computes and persists platform totals.
type StatsSource interface {
	Compute(ctx context.Context) (models.StatsSnapshot, error)
	SaveSnapshot(ctx context.Context, snap models.StatsSnapshot) error
}

// StatsRefresh is a background worker that recomputes the platform
// totals on an interval so the stats endpoints read a cheap snapshot
// instead of aggregating on every request.
type StatsRefresh struct {
	stats    StatsSource
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewStatsRefresh creates a stats refresh worker.
func NewStatsRefresh(stats StatsSource, logger *zap.Logger, interval time.Duration) *StatsRefresh {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatsRefresh{
		stats:    stats,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. The first refresh runs
// immediately so a fresh deployment has a snapshot before the first
// tick.
func (w *StatsRefresh) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("stats refresh worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *StatsRefresh) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("stats refresh worker stopped")
}

func (w *StatsRefresh) run() {
	defer w.wg.Done()

	w.refresh()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.refresh()
		}
	}
}

func (w *StatsRefresh) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := w.stats.Compute(ctx)
	if err != nil {
		w.log.Error("failed to compute stats", zap.Error(err))
		return
	}
	if err := w.stats.SaveSnapshot(ctx, snap); err != nil {
		w.log.Error("failed to save stats snapshot", zap.Error(err))
		return
	}

	w.log.Debug("stats snapshot refreshed",
		zap.Int64("items_donated", snap.ItemsDonated),
		zap.Int64("servings_shared", snap.ServingsShared))
}
