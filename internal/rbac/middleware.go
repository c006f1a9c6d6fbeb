package rbac

import (
	"log/slog"
	"net/http"

	"github.com/FusherTm/kimerav1/internal/shared"
)

// Middleware wires capability checks for HTTP handlers.
type Middleware struct {
	Checker *Checker
	Logger  *slog.Logger
}

// Require ensures the current principal's role holds the permission.
func (m Middleware) Require(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !m.Checker.Allowed(principal.Role, perm) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.String("role", principal.Role),
						slog.String("permission", string(perm)),
						slog.String("path", r.URL.Path))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
