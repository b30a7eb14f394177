package authz

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func protectedRouter(guard Middleware, principal Principal) http.Handler {
	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(ContextWithPrincipal(req.Context(), principal)))
			})
		})
	}
	r.Group(func(r chi.Router) {
		r.Use(guard.Protect(ModuleProduct, "category"))
		r.Get("/categories", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Post("/categories", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	})
	return r
}

func TestProtectAllowsGrantedMethod(t *testing.T) {
	source := &stubSets{sets: []PermissionSet{
		grantSet(ModuleProduct, "category", SubmodulePermissions{View: true}),
	}}
	guard := Middleware{Evaluator: NewEvaluator(source, discardLogger()), Logger: discardLogger()}
	router := protectedRouter(guard, testUser{id: 1})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Same user, write verb, no create grant.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader("{}")))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "you cannot perform create on category")
}

func TestProtectUnauthenticated(t *testing.T) {
	guard := Middleware{Evaluator: NewEvaluator(&stubSets{}, discardLogger())}
	router := protectedRouter(guard, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectSuperuser(t *testing.T) {
	guard := Middleware{Evaluator: NewEvaluator(&stubSets{}, discardLogger())}
	router := protectedRouter(guard, testUser{id: 1, superuser: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader("{}")))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
