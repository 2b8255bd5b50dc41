package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asset-atlas/atlas/internal/assets"
	"github.com/asset-atlas/atlas/internal/audit"
	"github.com/asset-atlas/atlas/internal/auth"
	"github.com/asset-atlas/atlas/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthMiddleware auth.Middleware
	AuthHandler    *auth.Handler
	AssetsHandler  *assets.Handler
	UsersHandler   *users.Handler
	AuditHandler   *audit.Handler
}

// NewRouter assembles the HTTP routing tree. Every mutating route sits
// behind the bearer middleware plus a capability check; only login and
// the health probe are open.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: params.Logger, Config: params.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountLogin(r)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			params.AuthHandler.MountMe(r)
			r.Route("/assets", params.AssetsHandler.MountRoutes)
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/audit", params.AuditHandler.MountRoutes)
		})
	})

	return r
}
