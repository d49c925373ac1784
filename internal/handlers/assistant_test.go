package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type stubAssistantService struct {
	msg          models.ChatMessage
	err          error
	lastQuestion string
	lastFeedback dto.FeedbackRequest
	cleared      bool
}

func (s *stubAssistantService) Ask(_ context.Context, _, question string) (models.ChatMessage, error) {
	s.lastQuestion = question
	return s.msg, s.err
}

func (s *stubAssistantService) Feedback(_ context.Context, _ string, req dto.FeedbackRequest) error {
	s.lastFeedback = req
	return s.err
}

func (s *stubAssistantService) History(_ context.Context, _ string) ([]models.ChatMessage, error) {
	return []models.ChatMessage{s.msg}, s.err
}

func (s *stubAssistantService) Clear(_ context.Context, _ string) error {
	s.cleared = true
	return s.err
}

func TestAssistantAsk_ErrorStateIsSuccess(t *testing.T) {
	svc := &stubAssistantService{msg: models.ChatMessage{ID: "m1", Status: models.MessageError, Unreachable: true}}
	resp := &stubResponseHandler{}
	h := NewAssistantHandlers(&Deps{ResponseHandler: resp, AssistantSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/assistant/ask", strings.NewReader(`{"question":"NPL 추이"}`))
	h.Ask(httptest.NewRecorder(), withUID(req, "uid1"))

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if svc.lastQuestion != "NPL 추이" {
		t.Fatalf("unexpected question: %q", svc.lastQuestion)
	}
}

func TestAssistantFeedback_Accepted(t *testing.T) {
	svc := &stubAssistantService{}
	resp := &stubResponseHandler{}
	h := NewAssistantHandlers(&Deps{ResponseHandler: resp, AssistantSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/assistant/feedback", strings.NewReader(`{"messageId":"m1","rating":"up"}`))
	h.Feedback(httptest.NewRecorder(), withUID(req, "uid1"))

	if resp.writeSuccessStatus != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.writeSuccessStatus)
	}
	if svc.lastFeedback.MessageID != "m1" || svc.lastFeedback.Rating != dto.RatingUp {
		t.Fatalf("unexpected feedback: %+v", svc.lastFeedback)
	}
}

func TestAssistantClear(t *testing.T) {
	svc := &stubAssistantService{}
	resp := &stubResponseHandler{}
	h := NewAssistantHandlers(&Deps{ResponseHandler: resp, AssistantSvc: svc})

	h.Clear(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodDelete, "/assistant/messages", nil), "uid1"))

	if !svc.cleared || !resp.writeSuccessCalled {
		t.Fatal("expected history to be cleared")
	}
}
