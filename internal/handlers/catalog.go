package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/internal/response"
)

const maxUploadBytes = 10 << 20

type catalogService interface {
	List(ctx context.Context, uid string) ([]dto.CatalogEntry, error)
	Schema(ctx context.Context, uid, datasetID string) (models.Schema, error)
	Recommendations(ctx context.Context, uid, datasetID string) (dto.RecommendationResponse, error)
	AddSQL(ctx context.Context, uid string, caps access.Capabilities, req dto.AddCatalogRequest) (dto.CatalogEntry, error)
	AddUpload(ctx context.Context, uid string, caps access.Capabilities, req dto.AddCatalogRequest, fileName string, r io.Reader) (dto.CatalogEntry, error)
	Remove(ctx context.Context, uid string, caps access.Capabilities, datasetID string) error
}

type catalogHandlers struct {
	ResponseHandler response.ResponseHandler
	CatalogSvc      catalogService
}

func NewCatalogHandlers(deps *Deps) *catalogHandlers {
	return &catalogHandlers{
		ResponseHandler: deps.ResponseHandler,
		CatalogSvc:      deps.CatalogSvc,
	}
}

func (h *catalogHandlers) CatalogRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/{datasetId}", h.Remove)
	r.Get("/{datasetId}/schema", h.Schema)
	r.Get("/{datasetId}/recommendations", h.Recommendations)
	return r
}

func (h *catalogHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	entries, err := h.CatalogSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, entries)
}

// Add registers a custom dataset. SQL entries are JSON; spreadsheet uploads
// are multipart with the file under "file".
func (h *catalogHandlers) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := middleware.UID(ctx)
	caps := access.FromContext(ctx)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.addUpload(w, r, uid, caps)
		return
	}

	var req dto.AddCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if req.SourceType == models.SourceExcel {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("excel datasets must be uploaded as multipart/form-data"))
		return
	}
	entry, err := h.CatalogSvc.AddSQL(ctx, uid, caps, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, entry)
}

func (h *catalogHandlers) addUpload(w http.ResponseWriter, r *http.Request, uid string, caps access.Capabilities) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid upload: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("file is required"))
		return
	}
	defer file.Close()

	req := dto.AddCatalogRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    models.Category(r.FormValue("category")),
		SourceType:  models.SourceExcel,
	}
	entry, err := h.CatalogSvc.AddUpload(r.Context(), uid, caps, req, header.Filename, file)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, entry)
}

func (h *catalogHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetId")
	uid := middleware.UID(r.Context())
	if err := h.CatalogSvc.Remove(r.Context(), uid, access.FromContext(r.Context()), datasetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *catalogHandlers) Schema(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetId")
	uid := middleware.UID(r.Context())
	schema, err := h.CatalogSvc.Schema(r.Context(), uid, datasetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, schema)
}

func (h *catalogHandlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetId")
	uid := middleware.UID(r.Context())
	rec, err := h.CatalogSvc.Recommendations(r.Context(), uid, datasetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, rec)
}
