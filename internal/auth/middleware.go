package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/asset-atlas/atlas/internal/platform/httpx"
	"github.com/asset-atlas/atlas/internal/rbac"
	"github.com/asset-atlas/atlas/internal/shared"
)

// Middleware resolves the bearer token into an actor and places it in the
// request context. Every failure mode is reported uniformly as 401.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAuth rejects requests without a valid bearer token bound to an
// active account.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		subject, err := m.Service.ValidateToken(token)
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		user, err := m.Service.ResolveSubject(r.Context(), subject)
		if err != nil {
			if m.Logger != nil && !errors.Is(err, shared.ErrUnauthenticated) {
				m.Logger.Error("resolve token subject", slog.Any("error", err))
			}
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		ctx := rbac.ContextWithActor(r.Context(), user.Actor())
		ctx = contextWithUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
