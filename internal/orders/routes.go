package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/FusherTm/kimerav1/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermOrderView))
		r.Get("/orders", h.List)
		r.Get("/orders/{id}", h.Get)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermOrderCreate))
		r.Post("/orders", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermOrderUpdate))
		r.Patch("/orders/{id}/pricing", h.UpdatePricing)
		r.Post("/orders/{id}/status", h.ChangeStatus)
	})
}
