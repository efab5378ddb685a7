package servicerequests

import (
	"github.com/go-chi/chi/v5"

	"github.com/praxis-compliance/praxis/internal/authz"
)

// MountRoutes registers the service request routes. Assigning uses its
// own action so the matrix can reserve it for firm staff.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("service_requests", "view"))
		r.Get("/", h.list)
	})
	r.With(h.guard.RequireResource("service_requests", "view", authz.ResourceServiceRequests, "id")).
		Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("service_requests", "create"))
		r.Post("/", h.create)
	})
	r.With(h.guard.RequireResource("service_requests", "assign", authz.ResourceServiceRequests, "id")).
		Post("/{id}/assign", h.assign)
	r.With(h.guard.RequireResource("service_requests", "close", authz.ResourceServiceRequests, "id")).
		Post("/{id}/close", h.close)
}
