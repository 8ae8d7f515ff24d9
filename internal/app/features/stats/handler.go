// internal/app/features/stats/handler.go

// Package stats serves the community impact numbers: totals for the
// stats page and the donor leaderboard. Reads come from the periodic
// snapshot when one exists and fall back to computing on demand.
package stats

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	statsstore "github.com/dalemusser/sharebite/internal/app/store/stats"
	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"github.com/dalemusser/sharebite/internal/app/system/httpjson"
	"github.com/dalemusser/sharebite/internal/app/system/timeouts"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.uber.org/zap"
)

const maxLeaderboardSize = 100

// Source is the slice of the stats store the handlers need.
type Source interface {
	LatestSnapshot(ctx context.Context) (models.StatsSnapshot, error)
	Compute(ctx context.Context) (models.StatsSnapshot, error)
	Leaderboard(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error)
}

// Handler holds dependencies for the stats endpoints.
type Handler struct {
	Stats Source
	Log   *zap.Logger
}

// NewHandler constructs a stats Handler.
func NewHandler(stats Source, logger *zap.Logger) *Handler {
	return &Handler{Stats: stats, Log: logger}
}

// Totals handles GET /api/stats.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	snap, err := h.Stats.LatestSnapshot(ctx)
	if errors.Is(err, statsstore.ErrNoSnapshot) {
		// First request before the refresh worker has run.
		snap, err = h.Stats.Compute(ctx)
	}
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not load stats"))
		return
	}
	httpjson.Write(w, http.StatusOK, snap)
}

// Leaderboard handles GET /api/stats/leaderboard?limit=N.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			httpjson.WriteError(w, h.Log, apierr.Validation("limit must be a positive integer"))
			return
		}
		if n > maxLeaderboardSize {
			n = maxLeaderboardSize
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	entries, err := h.Stats.Leaderboard(ctx, limit)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not load leaderboard"))
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"leaders": entries})
}
