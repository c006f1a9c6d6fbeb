package partners

import (
	"github.com/go-chi/chi/v5"

	"github.com/FusherTm/kimerav1/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermFinanceView))
		r.Get("/partners", h.List)
		r.Get("/partners/{id}", h.Get)
	})
}
