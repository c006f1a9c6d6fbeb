package connections

import (
	"github.com/go-chi/chi/v5"

	"github.com/FusherTm/kimerav1/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermFinanceView))
		r.Get("/connections", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermFinanceEdit))
		r.Post("/connections", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermOrderUpdate))
		r.Post("/connections/{id}/apply", h.Apply)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermOrderView))
		r.Get("/connections/orders/{orderID}/application", h.OrderApplication)
	})
}
