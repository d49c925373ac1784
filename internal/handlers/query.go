package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
	"github.com/GregMSThompson/riskbi-backend/internal/response"
)

type queryService interface {
	Execute(ctx context.Context, uid string, cfg dto.QueryConfig) (dto.QueryResult, error)
}

type queryHandlers struct {
	ResponseHandler response.ResponseHandler
	QuerySvc        queryService
}

func NewQueryHandlers(deps *Deps) *queryHandlers {
	return &queryHandlers{
		ResponseHandler: deps.ResponseHandler,
		QuerySvc:        deps.QuerySvc,
	}
}

func (h *queryHandlers) QueryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Execute)
	return r
}

func (h *queryHandlers) Execute(w http.ResponseWriter, r *http.Request) {
	var cfg dto.QueryConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if cfg.DatasetID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("datasetId is required"))
		return
	}

	uid := middleware.UID(r.Context())
	result, err := h.QuerySvc.Execute(r.Context(), uid, cfg)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}
