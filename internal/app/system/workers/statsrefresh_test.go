package workers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/sharebite/internal/app/system/workers"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.uber.org/zap"
)

type recordingStats struct {
	mu       sync.Mutex
	computed int
	saved    []models.StatsSnapshot
}

func (r *recordingStats) Compute(context.Context) (models.StatsSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.computed++
	return models.StatsSnapshot{ItemsDonated: int64(r.computed), ComputedAt: time.Now().UTC()}, nil
}

func (r *recordingStats) SaveSnapshot(_ context.Context, snap models.StatsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, snap)
	return nil
}

func (r *recordingStats) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.computed, len(r.saved)
}

func TestStatsRefreshRunsImmediatelyAndStops(t *testing.T) {
	stats := &recordingStats{}
	w := workers.NewStatsRefresh(stats, zap.NewNop(), time.Hour)

	w.Start()

	deadline := time.Now().Add(3 * time.Second)
	for {
		if computed, saved := stats.counts(); computed >= 1 && saved >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("worker never produced a snapshot")
		}
		time.Sleep(5 * time.Millisecond)
	}

	w.Stop()

	computed, saved := stats.counts()
	if computed != saved {
		t.Errorf("computed %d snapshots but saved %d", computed, saved)
	}

	// No more refreshes after Stop returns.
	time.Sleep(20 * time.Millisecond)
	if c, _ := stats.counts(); c != computed {
		t.Errorf("worker kept running after Stop: %d -> %d", computed, c)
	}
}

func TestStatsRefreshTicks(t *testing.T) {
	stats := &recordingStats{}
	w := workers.NewStatsRefresh(stats, zap.NewNop(), 10*time.Millisecond)

	w.Start()
	defer w.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for {
		if computed, _ := stats.counts(); computed >= 3 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("worker did not keep refreshing on its interval")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
