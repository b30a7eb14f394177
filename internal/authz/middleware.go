package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gudam-erp/gudam-erp/internal/platform/httpx"
)

type principalContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in the context.
// The session layer installs it before any protected route runs.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalContextKey{}).(Principal)
	return p
}

// Middleware wires permission gating for HTTP handlers.
type Middleware struct {
	Evaluator *Evaluator
	Logger    *slog.Logger
}

// Protect gates the wrapped routes on the module permission derived from the
// request method. An empty sub-module name skips gating entirely: permission
// checks are opt-in per endpoint.
func (m Middleware) Protect(module Module, submodule string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			action := ResolveOperation(r.Method)
			if err := m.Evaluator.Require(r.Context(), principal, module, submodule, action); err != nil {
				m.respondDenied(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) respondDenied(w http.ResponseWriter, err error) {
	var denied *DeniedError
	switch {
	case errors.As(err, &denied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", denied.Error())
	case errors.Is(err, ErrUnauthenticated):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	default:
		if m.Logger != nil {
			m.Logger.Error("permission check failed", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
