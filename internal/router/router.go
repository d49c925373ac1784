package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/riskbi-backend/internal/handlers"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
)

// NewRouter mounts every API route behind auth and capability resolution.
// /healthz stays public.
func NewRouter(deps *handlers.Deps, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	cth := handlers.NewCatalogHandlers(deps)
	qh := handlers.NewQueryHandlers(deps)
	bh := handlers.NewBuilderHandlers(deps)
	dh := handlers.NewDashboardHandlers(deps)
	ah := handlers.NewAssistantHandlers(deps)
	ush := handlers.NewUserHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(middleware.Capabilities(deps.UserSvc))

		r.Mount("/catalog", cth.CatalogRoutes())
		r.Mount("/query", qh.QueryRoutes())
		r.Mount("/builder", bh.BuilderRoutes())
		r.Mount("/dashboards", dh.DashboardRoutes())
		r.Mount("/assistant", ah.AssistantRoutes())
		r.Mount("/users", ush.UserRoutes())
	})
	return r
}
