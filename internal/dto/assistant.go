package dto

import "github.com/GregMSThompson/riskbi-backend/internal/models"

type AskRequest struct {
	Question string `json:"question"`
}

type FeedbackRequest struct {
	MessageID string `json:"messageId"`
	Rating    string `json:"rating"`
}

const (
	RatingUp   = "up"
	RatingDown = "down"
)

// AssistantAnswer is the assistant service's /api/ask response body.
type AssistantAnswer struct {
	MessageID string       `json:"message_id"`
	SQL       string       `json:"sql"`
	Data      []models.Row `json:"data"`
	ChartType string       `json:"chart_type"`
	Summary   string       `json:"summary"`
	FromCache bool         `json:"from_cache"`
}

// AssistantFeedback is the assistant service's /api/feedback request body.
type AssistantFeedback struct {
	MessageID string `json:"message_id"`
	Rating    string `json:"rating"`
}
