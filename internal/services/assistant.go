package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

const (
	historyLimit    = 100
	feedbackTimeout = 10 * time.Second

	msgAssistantUnreachable = "AI 서버에 연결할 수 없습니다. FastAPI 서버가 실행 중인지 확인하세요.\n\n" +
		"cd ai-backend\nuvicorn main:app --reload --port 8000"
	msgAssistantTimeout  = "AI 서버 응답 시간이 초과되었습니다 (%s)."
	msgAssistantUnknown  = "알 수 없는 오류가 발생했습니다."
	msgAssistantCanceled = "요청이 취소되었습니다."
)

type assistantClient interface {
	Ask(ctx context.Context, question string) (dto.AssistantAnswer, error)
	Feedback(ctx context.Context, fb dto.AssistantFeedback) error
}

// assistantStore keeps each user's chat history. SaveMessage upserts by id.
type assistantStore interface {
	SaveMessage(ctx context.Context, uid string, msg models.ChatMessage) error
	GetMessage(ctx context.Context, uid, messageID string) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, uid string, limit int) ([]models.ChatMessage, error)
	DeleteMessages(ctx context.Context, uid string) error
}

type assistantService struct {
	client   assistantClient
	store    assistantStore
	timeout  time.Duration
	ttl      time.Duration
	clockNow func() time.Time
	newID    func() string
	spawn    func(func())
}

func NewAssistantService(client assistantClient, store assistantStore, timeout, ttl time.Duration) *assistantService {
	return &assistantService{
		client:   client,
		store:    store,
		timeout:  timeout,
		ttl:      ttl,
		clockNow: time.Now,
		newID:    uuid.NewString,
		spawn:    func(f func()) { go f() },
	}
}

// Ask forwards a question and records the exchange. Assistant failures are
// not returned as errors: they come back as a message in the error state.
func (s *assistantService) Ask(ctx context.Context, uid, question string) (models.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.ChatMessage{}, errs.NewValidationError("question is required")
	}
	log := logger.FromContext(ctx)

	start := s.clockNow()
	msg := models.ChatMessage{
		ID:        s.newID(),
		Question:  question,
		Status:    models.MessageLoading,
		CreatedAt: start,
	}
	if s.ttl > 0 {
		msg.ExpiresAt = start.Add(s.ttl)
	}
	s.save(ctx, uid, msg)

	askCtx, cancel := context.WithTimeout(ctx, s.timeout)
	answer, err := s.client.Ask(askCtx, question)
	cancel()
	msg.ElapsedMs = s.clockNow().Sub(start).Milliseconds()

	if err != nil {
		msg.Status = models.MessageError
		msg.Error, msg.Unreachable = s.describe(ctx, err)
		log.Warn("assistant request failed", "message_id", msg.ID, "elapsed_ms", msg.ElapsedMs, "error", err)
	} else {
		msg.Status = models.MessageSuccess
		msg.RemoteMessageID = answer.MessageID
		msg.SQL = answer.SQL
		msg.Data = answer.Data
		msg.ChartType = answer.ChartType
		msg.Summary = answer.Summary
		msg.FromCache = answer.FromCache
		log.Info("assistant answered", "message_id", msg.ID, "elapsed_ms", msg.ElapsedMs, "from_cache", answer.FromCache)
	}

	// the caller may be gone; the final state still has to land
	s.save(context.WithoutCancel(ctx), uid, msg)
	return msg, nil
}

// describe turns an assistant error into the text shown on the message.
// ctx is the caller's context, not the one bounded by the timeout.
func (s *assistantService) describe(ctx context.Context, err error) (text string, unreachable bool) {
	if ctx.Err() != nil {
		return msgAssistantCanceled, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf(msgAssistantTimeout, s.timeout), false
	}
	var ext *errs.ExternalServiceError
	if errors.As(err, &ext) {
		if ext.Transient {
			return msgAssistantUnreachable, true
		}
		if ext.Message != "" {
			return ext.Message, false
		}
	}
	return msgAssistantUnknown, false
}

// Feedback records the rating locally and forwards it in the background.
// Forwarding failures are logged and otherwise ignored.
func (s *assistantService) Feedback(ctx context.Context, uid string, req dto.FeedbackRequest) error {
	if req.Rating != dto.RatingUp && req.Rating != dto.RatingDown {
		return errs.NewValidationError("rating must be up or down")
	}
	if req.MessageID == "" {
		return errs.NewValidationError("messageId is required")
	}
	msg, err := s.store.GetMessage(ctx, uid, req.MessageID)
	if err != nil {
		return err
	}
	if msg.RemoteMessageID == "" {
		return errs.NewValidationError("message has no answer to rate")
	}

	msg.Rating = req.Rating
	s.save(ctx, uid, *msg)

	fb := dto.AssistantFeedback{MessageID: msg.RemoteMessageID, Rating: req.Rating}
	detached := context.WithoutCancel(ctx)
	s.spawn(func() {
		fctx, cancel := context.WithTimeout(detached, feedbackTimeout)
		defer cancel()
		if err := s.client.Feedback(fctx, fb); err != nil {
			logger.FromContext(detached).Debug("assistant feedback dropped", "message_id", fb.MessageID, "error", err)
		}
	})
	return nil
}

// History returns unexpired messages, oldest first.
func (s *assistantService) History(ctx context.Context, uid string) ([]models.ChatMessage, error) {
	msgs, err := s.store.ListMessages(ctx, uid, historyLimit)
	if err != nil {
		return nil, err
	}
	now := s.clockNow()
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if !m.ExpiresAt.IsZero() && m.ExpiresAt.Before(now) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *assistantService) Clear(ctx context.Context, uid string) error {
	return s.store.DeleteMessages(ctx, uid)
}

func (s *assistantService) save(ctx context.Context, uid string, msg models.ChatMessage) {
	if err := s.store.SaveMessage(ctx, uid, msg); err != nil {
		logger.FromContext(ctx).Warn("failed to persist chat message", "message_id", msg.ID, "error", err)
	}
}
