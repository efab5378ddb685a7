package documents

import (
	"github.com/go-chi/chi/v5"

	"github.com/praxis-compliance/praxis/internal/authz"
)

// MountRoutes registers the document routes. The list endpoint verifies
// ownership of the addressed client; single-document endpoints verify
// ownership of the document through its client.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireResource("documents", "view", authz.ResourceClients, "clientID")).
		Get("/clients/{clientID}", h.listByClient)
	r.With(h.guard.RequireResource("documents", "view", authz.ResourceDocuments, "id")).
		Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("documents", "upload"))
		r.Post("/", h.create)
	})
	r.With(h.guard.RequireResource("documents", "delete", authz.ResourceDocuments, "id")).
		Delete("/{id}", h.remove)
}
