// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/sharebite/internal/app/coordinator"
	accountsfeature "github.com/dalemusser/sharebite/internal/app/features/accounts"
	foodfeature "github.com/dalemusser/sharebite/internal/app/features/food"
	healthfeature "github.com/dalemusser/sharebite/internal/app/features/health"
	livefeature "github.com/dalemusser/sharebite/internal/app/features/live"
	statsfeature "github.com/dalemusser/sharebite/internal/app/features/stats"
	claimstore "github.com/dalemusser/sharebite/internal/app/store/claims"
	foodstore "github.com/dalemusser/sharebite/internal/app/store/fooditems"
	statsstore "github.com/dalemusser/sharebite/internal/app/store/stats"
	userstore "github.com/dalemusser/sharebite/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed, so the token manager, live hub,
// and login limiter created in Startup are ready to wire in.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	users := userstore.New(deps.MongoDatabase)
	items := foodstore.New(deps.MongoDatabase)
	claims := claimstore.New(deps.MongoDatabase)
	stats := statsstore.New(deps.MongoDatabase, users, claims)

	coord := coordinator.New(items, users, claims, liveHub, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, liveHub, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	accountsHandler := accountsfeature.NewHandler(users, tokenManager, loginLimiter, logger)
	r.Mount("/api/auth", accountsfeature.Routes(accountsHandler))

	foodHandler := foodfeature.NewHandler(coord, items, claims, logger)
	r.Mount("/api/food", foodfeature.Routes(foodHandler, tokenManager))

	statsHandler := statsfeature.NewHandler(stats, logger)
	r.Mount("/api/stats", statsfeature.Routes(statsHandler))

	liveHandler := livefeature.NewHandler(liveHub, logger)
	r.Mount("/ws", livefeature.Routes(liveHandler, tokenManager))

	return r, nil
}
