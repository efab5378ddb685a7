package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/praxis-compliance/praxis/internal/authz"
)

// MountRoutes registers the user routes. /me answers for any
// authenticated member. Editing a profile checks ownership of the target
// user, so members always reach their own row while edits to colleagues
// need the users.edit grant plus tenant ownership.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.profile)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require("users", "view"))
		r.Get("/", h.list)
	})
	r.With(h.guard.RequireResource("users", "view", authz.ResourceUsers, "id")).
		Get("/{id}", h.get)
	r.With(h.guard.RequireResource("users", "edit", authz.ResourceUsers, "id")).
		Patch("/{id}", h.update)
	r.With(h.guard.RequireResource("users", "manage", authz.ResourceUsers, "id")).
		Post("/{id}/active", h.setActive)
}
