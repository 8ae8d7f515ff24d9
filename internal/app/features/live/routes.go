// internal/app/features/live/routes.go
package live

import (
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter that serves the websocket endpoint.
func Routes(h *Handler, tokens *auth.TokenManager) chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireToken(tokens)).Get("/", h.Serve) // mounted under /ws
	return r
}
