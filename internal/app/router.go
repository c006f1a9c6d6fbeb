package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/FusherTm/kimerav1/internal/finance/connections"
	"github.com/FusherTm/kimerav1/internal/finance/statement"
	"github.com/FusherTm/kimerav1/internal/finance/transactions"
	"github.com/FusherTm/kimerav1/internal/observability"
	"github.com/FusherTm/kimerav1/internal/orders"
	"github.com/FusherTm/kimerav1/internal/partners"
	"github.com/FusherTm/kimerav1/internal/rbac"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	OrdersHandler       *orders.Handler
	ConnectionsHandler  *connections.Handler
	TransactionsHandler *transactions.Handler
	StatementHandler    *statement.Handler
	PartnersHandler     *partners.Handler
	RBACMiddleware      rbac.Middleware
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		params.OrdersHandler.MountRoutes(r, params.RBACMiddleware)
		params.ConnectionsHandler.MountRoutes(r, params.RBACMiddleware)
		params.TransactionsHandler.MountRoutes(r, params.RBACMiddleware)
		params.StatementHandler.MountRoutes(r, params.RBACMiddleware)
		params.PartnersHandler.MountRoutes(r, params.RBACMiddleware)
	})

	return r
}
