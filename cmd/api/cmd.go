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

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/bootstrap"
	"github.com/GregMSThompson/riskbi-backend/internal/config"
	"github.com/GregMSThompson/riskbi-backend/internal/crypto"
	"github.com/GregMSThompson/riskbi-backend/internal/customdata"
	"github.com/GregMSThompson/riskbi-backend/internal/datasets"
	"github.com/GregMSThompson/riskbi-backend/internal/handlers"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
	"github.com/GregMSThompson/riskbi-backend/internal/response"
	"github.com/GregMSThompson/riskbi-backend/internal/router"
	"github.com/GregMSThompson/riskbi-backend/internal/services"
	"github.com/GregMSThompson/riskbi-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg, err := config.New()
	exitOnError("config failed", err, slog.Default())
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	var stores store.Set
	if cfg.Storage == config.StorageMemory {
		stores = store.NewMemorySet()
	} else {
		var sealer store.Sealer = crypto.Plain{}
		if bs.KMS != nil {
			sealer = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
		}
		stores = store.NewFirestoreSet(bs.Firestore, sealer)
	}

	// services
	registry := datasets.Builtin()
	runtime := customdata.NewRuntime(stores.Catalog)
	engine := services.NewQueryEngine(registry, runtime)
	resolver := services.NewWidgetResolver(registry, runtime, engine, services.NewRenderer())
	libserv := services.NewLibraryService(stores.Builder)
	catserv := services.NewCatalogService(registry, stores.Catalog, runtime)
	bldserv, err := services.NewBuilderService(stores.Builder, libserv, catserv, resolver, cfg.SessionCacheSize)
	exitOnError("builder service failed", err, bs.Log)
	asserv := services.NewAssistantService(bs.Assistant, stores.Assistant, cfg.AssistantTimeout, cfg.AssistantHistoryTTL)
	userv := services.NewUserService(stores.Users, access.ParseRole(cfg.DefaultRole, access.RoleEditor))

	// dependencies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = response.New(bs.Log)
	deps.CatalogSvc = catserv
	deps.QuerySvc = engine
	deps.BuilderSvc = bldserv
	deps.LibrarySvc = libserv
	deps.AssistantSvc = asserv
	deps.UserSvc = userv

	auth := middleware.LocalAuth
	if cfg.Auth == config.AuthFirebase {
		auth = middleware.NewMiddleware(bs.Firebase).FirebaseAuth
	}

	// router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps, auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	bs.Log.Info("listening", "addr", srv.Addr)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	exitOnError("server start failed", err, bs.Log)
}
