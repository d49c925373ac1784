package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/middleware"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/internal/response"
)

type assistantService interface {
	Ask(ctx context.Context, uid, question string) (models.ChatMessage, error)
	Feedback(ctx context.Context, uid string, req dto.FeedbackRequest) error
	History(ctx context.Context, uid string) ([]models.ChatMessage, error)
	Clear(ctx context.Context, uid string) error
}

type assistantHandlers struct {
	ResponseHandler response.ResponseHandler
	AssistantSvc    assistantService
}

func NewAssistantHandlers(deps *Deps) *assistantHandlers {
	return &assistantHandlers{
		ResponseHandler: deps.ResponseHandler,
		AssistantSvc:    deps.AssistantSvc,
	}
}

func (h *assistantHandlers) AssistantRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/ask", h.Ask)
	r.Post("/feedback", h.Feedback)
	r.Get("/messages", h.History)
	r.Delete("/messages", h.Clear)
	return r
}

// Ask always answers 200 once the question is accepted; assistant failures
// are reported on the returned message.
func (h *assistantHandlers) Ask(w http.ResponseWriter, r *http.Request) {
	var body dto.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	msg, err := h.AssistantSvc.Ask(r.Context(), uid, body.Question)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, msg)
}

func (h *assistantHandlers) Feedback(w http.ResponseWriter, r *http.Request) {
	var body dto.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	if err := h.AssistantSvc.Feedback(r.Context(), uid, body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusAccepted, nil)
}

func (h *assistantHandlers) History(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	msgs, err := h.AssistantSvc.History(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, msgs)
}

func (h *assistantHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.AssistantSvc.Clear(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
