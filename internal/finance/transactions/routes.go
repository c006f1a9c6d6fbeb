package transactions

import (
	"github.com/go-chi/chi/v5"

	"github.com/FusherTm/kimerav1/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermFinanceView))
		r.Get("/financial-transactions", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermFinanceEdit))
		r.Post("/financial-transactions", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(rbac.PermPurchaseEdit))
		r.Post("/purchase-orders", h.PostPurchaseOrder)
	})
}
