// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/sharebite/internal/app/features/live"
	claimstore "github.com/dalemusser/sharebite/internal/app/store/claims"
	statsstore "github.com/dalemusser/sharebite/internal/app/store/stats"
	userstore "github.com/dalemusser/sharebite/internal/app/store/users"
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/dalemusser/sharebite/internal/app/system/ratelimit"
	"github.com/dalemusser/sharebite/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Long-lived pieces created in Startup and shared with BuildHandler and
// Shutdown. WAFFLE calls the hooks in order on a single goroutine, so
// plain package variables are safe here.
var (
	tokenManager *auth.TokenManager
	liveHub      *live.Hub
	loginLimiter *ratelimit.Limiter
	statsWorker  *workers.StatsRefresh
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	tm, err := auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL)
	if err != nil {
		return err
	}
	tokenManager = tm

	liveHub = live.NewHub(logger)
	go liveHub.Run()

	loginLimiter = ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)

	stats := statsstore.New(deps.MongoDatabase,
		userstore.New(deps.MongoDatabase),
		claimstore.New(deps.MongoDatabase))
	statsWorker = workers.NewStatsRefresh(stats, logger, appCfg.StatsInterval)
	statsWorker.Start()

	return nil
}
