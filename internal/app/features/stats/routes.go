// internal/app/features/stats/routes.go
package stats

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the stats endpoints. They are public:
// the impact numbers back the landing page.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Totals)
	r.Get("/leaderboard", h.Leaderboard)
	return r
}
