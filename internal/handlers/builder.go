package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/internal/response"
)

type builderService interface {
	State(ctx context.Context, uid string) (models.BuilderState, error)
	Rename(ctx context.Context, uid string, caps access.Capabilities, name string) (models.BuilderState, error)
	SetFilter(ctx context.Context, uid string, filter models.GlobalFilter) (models.BuilderState, error)
	AddWidget(ctx context.Context, uid string, caps access.Capabilities, req dto.AddWidgetRequest) (models.Widget, error)
	RemoveWidget(ctx context.Context, uid string, caps access.Capabilities, widgetID string) error
	ReorderWidgets(ctx context.Context, uid string, caps access.Capabilities, ids []string) (models.BuilderState, error)
	UpdateSettings(ctx context.Context, uid string, caps access.Capabilities, widgetID string, req dto.UpdateWidgetSettingsRequest) (models.Widget, error)
	UpdateLayout(ctx context.Context, uid string, caps access.Capabilities, widgetID string, req dto.UpdateLayoutRequest) (models.Layout, error)
	Save(ctx context.Context, uid string, caps access.Capabilities, name string) (models.SavedDashboard, error)
	Reset(ctx context.Context, uid string, caps access.Capabilities) (models.BuilderState, error)
	LoadSaved(ctx context.Context, uid, name string) (models.BuilderState, error)
	RenderWidget(ctx context.Context, uid, widgetID string) (dto.WidgetRenderResponse, error)
	RenderAll(ctx context.Context, uid string) ([]dto.WidgetRenderResponse, error)
}

type builderHandlers struct {
	ResponseHandler response.ResponseHandler
	BuilderSvc      builderService
}

func NewBuilderHandlers(deps *Deps) *builderHandlers {
	return &builderHandlers{
		ResponseHandler: deps.ResponseHandler,
		BuilderSvc:      deps.BuilderSvc,
	}
}

func (h *builderHandlers) BuilderRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.State)
	r.Put("/name", h.Rename)
	r.Put("/filter", h.SetFilter)
	r.Get("/render", h.RenderAll)
	r.Post("/save", h.Save)
	r.Post("/reset", h.Reset)
	r.Post("/widgets", h.AddWidget)
	r.Put("/widgets/reorder", h.ReorderWidgets) // must be before /{widgetId}
	r.Put("/widgets/{widgetId}/settings", h.UpdateSettings)
	r.Put("/widgets/{widgetId}/layout", h.UpdateLayout)
	r.Delete("/widgets/{widgetId}", h.RemoveWidget)
	r.Get("/widgets/{widgetId}/render", h.RenderWidget)
	return r
}

func (h *builderHandlers) State(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	st, err := h.BuilderSvc.State(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, st)
}

func (h *builderHandlers) Rename(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameDashboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	st, err := h.BuilderSvc.Rename(r.Context(), uid, access.FromContext(r.Context()), req.Name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, st)
}

func (h *builderHandlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	var filter models.GlobalFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	st, err := h.BuilderSvc.SetFilter(r.Context(), uid, filter)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, st)
}

func (h *builderHandlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.BuilderSvc.AddWidget(r.Context(), uid, access.FromContext(r.Context()), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *builderHandlers) RemoveWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	if err := h.BuilderSvc.RemoveWidget(r.Context(), uid, access.FromContext(r.Context()), widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *builderHandlers) ReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderWidgetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	st, err := h.BuilderSvc.ReorderWidgets(r.Context(), uid, access.FromContext(r.Context()), req.WidgetIDs)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, st)
}

func (h *builderHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateWidgetSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.BuilderSvc.UpdateSettings(r.Context(), uid, access.FromContext(r.Context()), widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *builderHandlers) UpdateLayout(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	layout, err := h.BuilderSvc.UpdateLayout(r.Context(), uid, access.FromContext(r.Context()), widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, layout)
}

// Save accepts an empty body, which keeps the current dashboard name.
func (h *builderHandlers) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveDashboardRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
	}
	uid := middleware.UID(r.Context())
	saved, err := h.BuilderSvc.Save(r.Context(), uid, access.FromContext(r.Context()), req.Name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, saved)
}

func (h *builderHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	st, err := h.BuilderSvc.Reset(r.Context(), uid, access.FromContext(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, st)
}

func (h *builderHandlers) RenderWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	uid := middleware.UID(r.Context())
	resp, err := h.BuilderSvc.RenderWidget(r.Context(), uid, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *builderHandlers) RenderAll(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.BuilderSvc.RenderAll(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
