package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/platform/httpx"
	"github.com/gudam-erp/gudam-erp/internal/shared"
)

// PrincipalSource resolves a stored user ID to an authorization principal.
type PrincipalSource interface {
	PrincipalByID(ctx context.Context, id int64) (authz.Principal, error)
}

// Identity resolves the session user and installs the principal for the
// authorization layer.
type Identity struct {
	Users  PrincipalSource
	Logger *slog.Logger
}

// Require rejects requests without a valid authenticated session, then makes
// the principal available to downstream permission checks.
func (i Identity) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		raw := strings.TrimSpace(sess.User())
		if raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if i.Logger != nil {
				i.Logger.Error("parse session user id", slog.String("value", raw))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		principal, err := i.Users.PrincipalByID(r.Context(), id)
		if err != nil {
			if i.Logger != nil {
				i.Logger.Warn("load session user", slog.Int64("user_id", id), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(authz.ContextWithPrincipal(r.Context(), principal)))
	})
}
