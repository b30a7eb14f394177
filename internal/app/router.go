package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gudam-erp/gudam-erp/internal/accounts"
	"github.com/gudam-erp/gudam-erp/internal/auth"
	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/booking"
	"github.com/gudam-erp/gudam-erp/internal/loan"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/bagtypes"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/businesstypes"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/categories"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/companies"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/factories"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/products"
	"github.com/gudam-erp/gudam-erp/internal/pallot"
	"github.com/gudam-erp/gudam-erp/internal/party"
	"github.com/gudam-erp/gudam-erp/internal/shared"
	"github.com/gudam-erp/gudam-erp/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Identity       auth.Identity

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	PermissionsHandler   *authz.Handler
	CompaniesHandler     *companies.Handler
	BusinessTypesHandler *businesstypes.Handler
	FactoriesHandler     *factories.Handler
	CategoriesHandler    *categories.Handler
	ProductsHandler      *products.Handler
	BagTypesHandler      *bagtypes.Handler
	PartyHandler         *party.Handler
	BookingHandler       *booking.Handler
	PallotHandler        *pallot.Handler
	LoanHandler          *loan.Handler
	AccountsHandler      *accounts.Handler
}

// NewRouter constructs the chi.Router with Gudam defaults. Everything except
// the health probe and login sits behind the authenticated-session gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Identity.Require)

		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.PermissionsHandler != nil {
			params.PermissionsHandler.MountRoutes(r)
		}
		if params.CompaniesHandler != nil {
			params.CompaniesHandler.MountRoutes(r)
		}
		if params.BusinessTypesHandler != nil {
			params.BusinessTypesHandler.MountRoutes(r)
		}
		if params.FactoriesHandler != nil {
			params.FactoriesHandler.MountRoutes(r)
		}
		if params.CategoriesHandler != nil {
			params.CategoriesHandler.MountRoutes(r)
		}
		if params.ProductsHandler != nil {
			params.ProductsHandler.MountRoutes(r)
		}
		if params.BagTypesHandler != nil {
			params.BagTypesHandler.MountRoutes(r)
		}
		if params.PartyHandler != nil {
			params.PartyHandler.MountRoutes(r)
		}
		if params.BookingHandler != nil {
			params.BookingHandler.MountRoutes(r)
		}
		if params.PallotHandler != nil {
			params.PallotHandler.MountRoutes(r)
		}
		if params.LoanHandler != nil {
			params.LoanHandler.MountRoutes(r)
		}
		if params.AccountsHandler != nil {
			params.AccountsHandler.MountRoutes(r)
		}
	})

	return r
}
