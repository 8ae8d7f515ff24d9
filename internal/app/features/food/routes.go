// internal/app/features/food/routes.go
package food

import (
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the food endpoints, mounted under
// /api/food. Every route requires a token; role checks beyond that live
// in the coordinator, which owns the ownership rules too.
func Routes(h *Handler, tokens *auth.TokenManager) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireToken(tokens))

	r.With(auth.RequireRole(models.RoleDonor)).Post("/", h.Create)
	r.With(auth.RequireRole(models.RoleDonor)).Get("/", h.ListMine)
	r.Get("/available", h.ListAvailable)
	r.With(auth.RequireRole(models.RoleClient)).Get("/claimed", h.ListClaimed)
	r.With(auth.RequireRole(models.RoleClient)).Get("/claims", h.ListClaimHistory)
	r.With(auth.RequireRole(models.RoleClient)).Post("/claim/{id}", h.Claim)
	r.Put("/{id}", h.SetStatus)
	r.Delete("/{id}", h.Delete)
	return r
}
