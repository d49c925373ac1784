package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
	"github.com/GregMSThompson/riskbi-backend/internal/response"
)

type userService interface {
	Role(ctx context.Context, uid string) (access.Role, error)
	SetRole(ctx context.Context, uid, label string) (access.Role, error)
}

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	UserSvc         userService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		UserSvc:         deps.UserSvc,
	}
}

func (h *userHandlers) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me/role", h.GetRole)
	r.Put("/me/role", h.SetRole)
	return r
}

func roleResponse(role access.Role) dto.RoleResponse {
	caps := access.For(role)
	return dto.RoleResponse{
		Role:             string(role),
		CanEdit:          caps.CanEdit(),
		CanSave:          caps.CanSave(),
		CanReset:         caps.CanReset(),
		CanAddCatalog:    caps.CanAddCatalog(),
		CanDeleteCatalog: caps.CanDeleteCatalog(),
	}
}

func (h *userHandlers) GetRole(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	role, err := h.UserSvc.Role(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, roleResponse(role))
}

func (h *userHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	var body dto.SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	role, err := h.UserSvc.SetRole(r.Context(), uid, body.Role)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, roleResponse(role))
}
