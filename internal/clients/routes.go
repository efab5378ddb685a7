package clients

import (
	"github.com/go-chi/chi/v5"

	"github.com/praxis-compliance/praxis/internal/authz"
)

// MountRoutes registers the client routes. Reads require the view
// permission; single-resource reads and writes additionally verify tenant
// ownership of the addressed client.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("clients", "view"))
		r.Get("/", h.list)
	})
	r.With(h.guard.RequireResource("clients", "view", authz.ResourceClients, "id")).
		Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("clients", "create"))
		r.Post("/", h.create)
	})
	r.With(h.guard.RequireResource("clients", "edit", authz.ResourceClients, "id")).
		Patch("/{id}", h.update)
}
