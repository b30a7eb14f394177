package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gudam-erp/gudam-erp/internal/accounts"
	"github.com/gudam-erp/gudam-erp/internal/app"
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
	"github.com/gudam-erp/gudam-erp/internal/platform/cache"
	"github.com/gudam-erp/gudam-erp/internal/platform/db"
	"github.com/gudam-erp/gudam-erp/internal/shared"
	"github.com/gudam-erp/gudam-erp/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "gudam_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)

	authService := auth.NewService(usersService)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	identity := auth.Identity{Users: usersService, Logger: logger}

	setStore := authz.NewRepository(pool, logger)
	cachedSets := authz.NewCachedSets(setStore, redisClient, cfg.PermissionCacheTTL, logger)
	evaluator := authz.NewEvaluator(cachedSets, logger)
	scoper := authz.NewScoper(cachedSets, logger)
	guard := authz.Middleware{Evaluator: evaluator, Logger: logger}
	permissionsHandler := authz.NewHandler(logger, setStore, cachedSets)

	usersHandler := users.NewHandler(logger, usersService)

	companiesHandler := companies.NewHandler(logger, companies.NewService(companies.NewRepository(pool), scoper), guard)
	businessTypesHandler := businesstypes.NewHandler(logger, businesstypes.NewService(businesstypes.NewRepository(pool), scoper), guard)
	factoriesHandler := factories.NewHandler(logger, factories.NewService(factories.NewRepository(pool), scoper), guard)
	categoriesHandler := categories.NewHandler(logger, categories.NewService(categories.NewRepository(pool), scoper), guard)
	productsHandler := products.NewHandler(logger, products.NewService(products.NewRepository(pool), scoper), guard)
	bagTypesHandler := bagtypes.NewHandler(logger, bagtypes.NewService(bagtypes.NewRepository(pool), scoper), guard)
	partyHandler := party.NewHandler(logger,
		party.NewTypeService(party.NewTypeRepository(pool), scoper),
		party.NewPartyService(party.NewPartyRepository(pool), scoper),
		guard)
	bookingHandler := booking.NewHandler(logger, booking.NewService(booking.NewRepository(pool), scoper), guard)
	pallotHandler := pallot.NewHandler(logger, pallot.NewService(pallot.NewRepository(pool), scoper), guard)
	loanHandler := loan.NewHandler(logger, loan.NewService(loan.NewRepository(pool), scoper), guard)
	accountsHandler := accounts.NewHandler(logger, accounts.NewService(accounts.NewRepository(pool), scoper), guard)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Identity:       identity,

		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		PermissionsHandler:   permissionsHandler,
		CompaniesHandler:     companiesHandler,
		BusinessTypesHandler: businessTypesHandler,
		FactoriesHandler:     factoriesHandler,
		CategoriesHandler:    categoriesHandler,
		ProductsHandler:      productsHandler,
		BagTypesHandler:      bagTypesHandler,
		PartyHandler:         partyHandler,
		BookingHandler:       bookingHandler,
		PallotHandler:        pallotHandler,
		LoanHandler:          loanHandler,
		AccountsHandler:      accountsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
