package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/internal/response"
)

type libraryService interface {
	List(ctx context.Context, uid string) ([]models.SavedDashboard, error)
	Delete(ctx context.Context, uid string, caps access.Capabilities, name string) error
	SetHome(ctx context.Context, uid, name string) (models.SavedDashboard, error)
	Home(ctx context.Context, uid string) (models.SavedDashboard, error)
	ClearHome(ctx context.Context, uid string) error
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	LibrarySvc      libraryService
	BuilderSvc      builderService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		LibrarySvc:      deps.LibrarySvc,
		BuilderSvc:      deps.BuilderSvc,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/home", h.Home) // must be before /{name}
	r.Delete("/home", h.ClearHome)
	r.Post("/{name}/load", h.Load)
	r.Put("/{name}/home", h.SetHome)
	r.Delete("/{name}", h.Delete)
	return r
}

// dashboardName returns the unescaped {name} path parameter. Names are
// free text and usually arrive percent-encoded.
func dashboardName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		return "", errs.NewValidationError("invalid dashboard name")
	}
	return name, nil
}

func (h *dashboardHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	list, err := h.LibrarySvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, list)
}

func (h *dashboardHandlers) Load(w http.ResponseWriter, r *http.Request) {
	name, err := dashboardName(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	st, err := h.BuilderSvc.LoadSaved(r.Context(), uid, name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, st)
}

func (h *dashboardHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := dashboardName(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.LibrarySvc.Delete(r.Context(), uid, access.FromContext(r.Context()), name); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *dashboardHandlers) SetHome(w http.ResponseWriter, r *http.Request) {
	name, err := dashboardName(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	home, err := h.LibrarySvc.SetHome(r.Context(), uid, name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, home)
}

func (h *dashboardHandlers) Home(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	home, err := h.LibrarySvc.Home(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, home)
}

func (h *dashboardHandlers) ClearHome(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.LibrarySvc.ClearHome(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
