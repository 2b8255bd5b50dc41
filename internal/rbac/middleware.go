package rbac

import (
	"log/slog"
	"net/http"

	"github.com/asset-atlas/atlas/internal/platform/httpx"
)

// Middleware wires capability checks for HTTP handlers. It expects the
// authentication layer to have placed the actor in the request context.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require ensures the current actor holds the capability. Each route names
// exactly the capability it needs; there is no hierarchy between them.
func (m Middleware) Require(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing actor")
				return
			}
			if _, err := m.Service.Authorize(actor, cap); err != nil {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.String("capability", cap.String()),
						slog.String("username", actor.Username),
						slog.String("role", actor.Role.Name))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
