package filings

import (
	"github.com/go-chi/chi/v5"

	"github.com/praxis-compliance/praxis/internal/authz"
)

// MountRoutes registers the filing routes. Submitting and deciding use
// their own actions so the matrix can hand them to different roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("filings", "view"))
		r.Get("/", h.list)
	})
	r.With(h.guard.RequireResource("filings", "view", authz.ResourceFilings, "id")).
		Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("filings", "create"))
		r.Post("/", h.create)
	})
	r.With(h.guard.RequireResource("filings", "edit", authz.ResourceFilings, "id")).
		Patch("/{id}", h.update)
	r.With(h.guard.RequireResource("filings", "submit", authz.ResourceFilings, "id")).
		Post("/{id}/submit", h.submit)
	r.With(h.guard.RequireResource("filings", "decide", authz.ResourceFilings, "id")).
		Post("/{id}/accept", h.accept)
	r.With(h.guard.RequireResource("filings", "decide", authz.ResourceFilings, "id")).
		Post("/{id}/reject", h.reject)
}
