// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the account endpoints. Both endpoints
// are throttled per client address: login to slow credential guessing,
// register to slow bulk account creation.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	if h.Limits != nil {
		r.Use(h.Limits.Middleware)
	}
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	return r
}
